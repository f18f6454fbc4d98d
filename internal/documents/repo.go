package documents

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
)

// DocumentsRepo defines persistence operations for documents. Deleting a
// document removes its comments and their replies.
type DocumentsRepo interface {
	List(ctx context.Context) ([]Document, error)
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	Update(ctx context.Context, id string, patch Patch) (Document, error)
	Delete(ctx context.Context, id string) error
}
