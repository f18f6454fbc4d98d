package comments

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("comment not found")
	ErrReplyNotFound = errors.New("reply not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Repo persists comments and their replies. Comments come back with replies
// attached, oldest reply first; author profiles are filled in by the service.
type Repo interface {
	ListByDocument(ctx context.Context, documentID string, status Status) ([]Comment, error)
	Create(ctx context.Context, comment Comment) error
	GetByID(ctx context.Context, id string) (Comment, error)
	UpdateContent(ctx context.Context, id, content string) (Comment, error)
	SetResolved(ctx context.Context, id string, resolved bool) (Comment, error)
	// Delete removes the comment and its replies.
	Delete(ctx context.Context, id string) error

	CreateReply(ctx context.Context, reply Reply) error
	GetReply(ctx context.Context, id string) (Reply, error)
	UpdateReply(ctx context.Context, id, content string) (Reply, error)
	DeleteReply(ctx context.Context, id string) error
}
