package comments

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. Reply cascades come from the
// replies.comment_id foreign key.
type PGRepo struct {
	DB *sql.DB
}

const commentColumns = `id, document_id, user_id, highlighted_text, selection_from, selection_to, content, is_resolved, created_at, updated_at`

const replyColumns = `id, comment_id, user_id, content, created_at, updated_at`

// ListByDocument returns a document's comments, newest first, with replies attached.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string, status Status) ([]Comment, error) {
	query := `SELECT ` + commentColumns + `
FROM comments
WHERE document_id = $1`
	args := []any{documentID}
	switch status {
	case StatusOpen:
		query += ` AND is_resolved = $2`
		args = append(args, false)
	case StatusResolved:
		query += ` AND is_resolved = $2`
		args = append(args, true)
	}
	query += `
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Comment, 0)
	index := make(map[string]int)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	const repliesQuery = `SELECT r.id, r.comment_id, r.user_id, r.content, r.created_at, r.updated_at
FROM replies r
JOIN comments c ON c.id = r.comment_id
WHERE c.document_id = $1
ORDER BY r.created_at ASC`
	replyRows, err := r.DB.QueryContext(ctx, repliesQuery, documentID)
	if err != nil {
		return nil, err
	}
	defer replyRows.Close()
	for replyRows.Next() {
		reply, err := scanReply(replyRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[reply.CommentID]; ok {
			out[i].Replies = append(out[i].Replies, reply)
		}
	}
	return out, replyRows.Err()
}

// Create inserts a new comment.
func (r *PGRepo) Create(ctx context.Context, c Comment) error {
	const query = `
INSERT INTO comments (
    id,
    document_id,
    user_id,
    highlighted_text,
    selection_from,
    selection_to,
    content,
    is_resolved,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		c.ID,
		c.DocumentID,
		c.UserID,
		c.HighlightedText,
		c.SelectionFrom,
		c.SelectionTo,
		c.Content,
		c.IsResolved,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// GetByID returns a comment and its replies.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Comment, error) {
	const query = `SELECT ` + commentColumns + `
FROM comments
WHERE id = $1`
	c, err := scanComment(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return r.attachReplies(ctx, c)
}

// UpdateContent replaces the comment body.
func (r *PGRepo) UpdateContent(ctx context.Context, id, content string) (Comment, error) {
	const query = `UPDATE comments
SET content = $1, updated_at = now()
WHERE id = $2
RETURNING ` + commentColumns
	return r.updateReturning(ctx, query, content, id)
}

// SetResolved sets is_resolved. Setting the current value again is allowed.
func (r *PGRepo) SetResolved(ctx context.Context, id string, resolved bool) (Comment, error) {
	const query = `UPDATE comments
SET is_resolved = $1, updated_at = now()
WHERE id = $2
RETURNING ` + commentColumns
	return r.updateReturning(ctx, query, resolved, id)
}

func (r *PGRepo) updateReturning(ctx context.Context, query string, args ...any) (Comment, error) {
	c, err := scanComment(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	return r.attachReplies(ctx, c)
}

// Delete removes a comment; replies go with it.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, `DELETE FROM comments WHERE id = $1`, id, ErrNotFound)
}

// CreateReply inserts a reply.
func (r *PGRepo) CreateReply(ctx context.Context, reply Reply) error {
	const query = `
INSERT INTO replies (
    id,
    comment_id,
    user_id,
    content,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		reply.ID,
		reply.CommentID,
		reply.UserID,
		reply.Content,
		reply.CreatedAt,
		reply.UpdatedAt,
	)
	return err
}

// GetReply returns a single reply.
func (r *PGRepo) GetReply(ctx context.Context, id string) (Reply, error) {
	const query = `SELECT ` + replyColumns + `
FROM replies
WHERE id = $1`
	reply, err := scanReply(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reply{}, ErrReplyNotFound
		}
		return Reply{}, err
	}
	return reply, nil
}

// UpdateReply replaces the reply body.
func (r *PGRepo) UpdateReply(ctx context.Context, id, content string) (Reply, error) {
	const query = `UPDATE replies
SET content = $1, updated_at = now()
WHERE id = $2
RETURNING ` + replyColumns
	reply, err := scanReply(r.DB.QueryRowContext(ctx, query, content, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reply{}, ErrReplyNotFound
		}
		return Reply{}, err
	}
	return reply, nil
}

// DeleteReply removes a reply.
func (r *PGRepo) DeleteReply(ctx context.Context, id string) error {
	return deleteByID(ctx, r.DB, `DELETE FROM replies WHERE id = $1`, id, ErrReplyNotFound)
}

func (r *PGRepo) attachReplies(ctx context.Context, c Comment) (Comment, error) {
	const query = `SELECT ` + replyColumns + `
FROM replies
WHERE comment_id = $1
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, c.ID)
	if err != nil {
		return Comment{}, err
	}
	defer rows.Close()
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return Comment{}, err
		}
		c.Replies = append(c.Replies, reply)
	}
	return c, rows.Err()
}

func deleteByID(ctx context.Context, db *sql.DB, query, id string, missing error) error {
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return missing
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (Comment, error) {
	var c Comment
	if err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.UserID,
		&c.HighlightedText,
		&c.SelectionFrom,
		&c.SelectionTo,
		&c.Content,
		&c.IsResolved,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return Comment{}, err
	}
	c.Replies = make([]Reply, 0)
	return c, nil
}

func scanReply(row rowScanner) (Reply, error) {
	var reply Reply
	if err := row.Scan(
		&reply.ID,
		&reply.CommentID,
		&reply.UserID,
		&reply.Content,
		&reply.CreatedAt,
		&reply.UpdatedAt,
	); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

var _ Repo = (*PGRepo)(nil)
