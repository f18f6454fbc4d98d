package comments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo. Comment and reply cascades are applied by
// hand; DeleteByDocument is registered as the documents cascade hook.
type MemoryRepo struct {
	mu       sync.RWMutex
	comments map[string]Comment
	replies  map[string]Reply
	seq      map[string]int64
	next     int64
	now      func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		comments: make(map[string]Comment),
		replies:  make(map[string]Reply),
		seq:      make(map[string]int64),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string, status Status) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Comment, 0)
	for _, c := range r.comments {
		if c.DocumentID != documentID || !status.Matches(c) {
			continue
		}
		out = append(out, r.withReplies(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *MemoryRepo) Create(ctx context.Context, comment Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.Replies = nil
	r.comments[comment.ID] = comment
	r.stamp(comment.ID)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Comment, error) {
	if err := ctx.Err(); err != nil {
		return Comment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return r.withReplies(c), nil
}

func (r *MemoryRepo) UpdateContent(ctx context.Context, id, content string) (Comment, error) {
	return r.mutate(ctx, id, func(c *Comment) { c.Content = content })
}

func (r *MemoryRepo) SetResolved(ctx context.Context, id string, resolved bool) (Comment, error) {
	return r.mutate(ctx, id, func(c *Comment) { c.IsResolved = resolved })
}

func (r *MemoryRepo) mutate(ctx context.Context, id string, fn func(*Comment)) (Comment, error) {
	if err := ctx.Err(); err != nil {
		return Comment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	fn(&c)
	c.UpdatedAt = r.now()
	r.comments[id] = c
	return r.withReplies(c), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return ErrNotFound
	}
	r.deleteComment(id)
	return nil
}

// DeleteByDocument removes every comment of a document along with their replies.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.comments {
		if c.DocumentID == documentID {
			r.deleteComment(id)
		}
	}
	return nil
}

func (r *MemoryRepo) deleteComment(id string) {
	delete(r.comments, id)
	delete(r.seq, id)
	for rid, reply := range r.replies {
		if reply.CommentID == id {
			delete(r.replies, rid)
			delete(r.seq, rid)
		}
	}
}

func (r *MemoryRepo) CreateReply(ctx context.Context, reply Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[reply.CommentID]; !ok {
		return ErrNotFound
	}
	r.replies[reply.ID] = reply
	r.stamp(reply.ID)
	return nil
}

func (r *MemoryRepo) GetReply(ctx context.Context, id string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	reply, ok := r.replies[id]
	if !ok {
		return Reply{}, ErrReplyNotFound
	}
	return reply, nil
}

func (r *MemoryRepo) UpdateReply(ctx context.Context, id, content string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reply, ok := r.replies[id]
	if !ok {
		return Reply{}, ErrReplyNotFound
	}
	reply.Content = content
	reply.UpdatedAt = r.now()
	r.replies[id] = reply
	return reply, nil
}

func (r *MemoryRepo) DeleteReply(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.replies[id]; !ok {
		return ErrReplyNotFound
	}
	delete(r.replies, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryRepo) stamp(id string) {
	r.next++
	r.seq[id] = r.next
}

// withReplies must be called with the lock held.
func (r *MemoryRepo) withReplies(c Comment) Comment {
	replies := make([]Reply, 0)
	for _, reply := range r.replies {
		if reply.CommentID == c.ID {
			replies = append(replies, reply)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return r.seq[replies[i].ID] < r.seq[replies[j].ID]
	})
	c.Replies = replies
	return c
}

var _ Repo = (*MemoryRepo)(nil)
