package comments

import (
	"time"

	"aari-docs/internal/users"
)

// Comment is a discussion thread anchored to [SelectionFrom, SelectionTo) of
// the document's flattened text at creation time. Offsets are never remapped
// after later edits.
type Comment struct {
	ID              string        `json:"id"`
	DocumentID      string        `json:"documentId"`
	UserID          string        `json:"userId"`
	User            users.Profile `json:"user"`
	HighlightedText string        `json:"highlightedText"`
	SelectionFrom   int           `json:"selectionFrom"`
	SelectionTo     int           `json:"selectionTo"`
	Content         string        `json:"content"`
	IsResolved      bool          `json:"isResolved"`
	Replies         []Reply       `json:"replies"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Reply is a message inside a comment thread.
type Reply struct {
	ID        string        `json:"id"`
	CommentID string        `json:"commentId"`
	UserID    string        `json:"userId"`
	User      users.Profile `json:"user"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Status filters comment listings.
type Status string

const (
	StatusAll      Status = ""
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// ParseStatus accepts "", "all", "open" and "resolved".
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusAll, "all":
		return StatusAll, true
	case StatusOpen:
		return StatusOpen, true
	case StatusResolved:
		return StatusResolved, true
	}
	return StatusAll, false
}

// Matches reports whether a comment passes the filter.
func (s Status) Matches(c Comment) bool {
	switch s {
	case StatusOpen:
		return !c.IsResolved
	case StatusResolved:
		return c.IsResolved
	}
	return true
}
