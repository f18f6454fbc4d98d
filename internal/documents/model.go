package documents

import (
	"time"

	"aari-docs/internal/content"
)

// DefaultTitle is used when a document is created without a title.
const DefaultTitle = "Untitled"

// Document is a shared rich-text document. Any signed-in user may read and edit it.
type Document struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   content.Doc `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	// Source points at the original upload for imported documents.
	SourceKey      string `json:"-"`
	SourceMimeType string `json:"-"`
}

// Patch carries the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Title   *string
	Content *content.Doc
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}
