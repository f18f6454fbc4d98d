package comments

type createRequest struct {
	UserID          string `json:"userId"`
	Content         string `json:"content"`
	HighlightedText string `json:"highlightedText"`
	SelectionFrom   *int   `json:"selectionFrom"`
	SelectionTo     *int   `json:"selectionTo"`
}

type updateRequest struct {
	Content string `json:"content"`
}

type resolveRequest struct {
	IsResolved *bool `json:"isResolved"`
}

type replyRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}
