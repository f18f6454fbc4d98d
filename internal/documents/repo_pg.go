package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements DocumentsRepo using Postgres. Comment and reply cascades
// are enforced by foreign keys.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, title, content, source_key, source_mime_type, created_at, updated_at`

// List returns every document, most recently updated first.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	const query = `SELECT ` + documentColumns + `
FROM documents
ORDER BY updated_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    title,
    content,
    source_key,
    source_mime_type,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.Content,
		nullableString(doc.SourceKey),
		nullableString(doc.SourceMimeType),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID returns a single document.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `SELECT ` + documentColumns + `
FROM documents
WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Update applies the supplied fields and bumps updated_at.
func (r *PGRepo) Update(ctx context.Context, id string, patch Patch) (Document, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Content != nil {
		args = append(args, *patch.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := `UPDATE documents SET ` + strings.Join(sets, ", ") + fmt.Sprintf(`
WHERE id = $%d
RETURNING `, len(args)) + documentColumns

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Delete removes a document; comments and replies go with it.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var sourceKey sql.NullString
	var sourceMime sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&sourceKey,
		&sourceMime,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	if sourceKey.Valid {
		doc.SourceKey = sourceKey.String
	}
	if sourceMime.Valid {
		doc.SourceMimeType = sourceMime.String
	}
	return doc, nil
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

var _ DocumentsRepo = (*PGRepo)(nil)
