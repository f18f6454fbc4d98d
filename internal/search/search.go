// Package search provides full-text lookup over documents and comment threads.
package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultDocument ResultType = "document"
	ResultComment  ResultType = "comment"
)

// DefaultLimit caps results per entity type when the caller does not ask.
const DefaultLimit = 20

// Result is a single search hit returned to the caller.
type Result struct {
	Type       ResultType `json:"type"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Snippet    string     `json:"snippet"`
	DocumentID string     `json:"documentId"`
	Resolved   bool       `json:"resolved,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Limit      int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// DocumentRecord is what gets indexed for a document.
type DocumentRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CommentRecord is what gets indexed for a comment thread. Replies are folded
// into Body.
type CommentRecord struct {
	ID              string `json:"id"`
	DocumentID      string `json:"documentId"`
	HighlightedText string `json:"highlightedText"`
	Body            string `json:"body"`
	Status          string `json:"status"`
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

func (q Query) wants(t ResultType) bool {
	return q.FilterType == "" || q.FilterType == t
}

func nonNil(results []Result) []Result {
	if results == nil {
		return []Result{}
	}
	return results
}
