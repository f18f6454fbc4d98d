package documents

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"aari-docs/internal/content"
)

var docCols = []string{"id", "title", "content", "source_key", "source_mime_type", "created_at", "updated_at"}

func TestPGCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO documents").
		WithArgs("doc-1", "Untitled", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	err = repo.Create(context.Background(), Document{ID: "doc-1", Title: "Untitled", Content: content.Empty(), CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGListScansContent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY updated_at DESC")).
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("doc-2", "Tree", []byte(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}`), nil, nil, now, now).
			AddRow("doc-1", "Legacy", []byte(`"<p>old html</p>"`), "k/1_a.pdf", "application/pdf", now, now))

	repo := &PGRepo{DB: db}
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(list))
	}
	if content.PlainText(list[0].Content) != "hi" {
		t.Fatalf("unexpected tree text %q", content.PlainText(list[0].Content))
	}
	if content.PlainText(list[1].Content) != "old html" {
		t.Fatalf("legacy content not converted: %q", content.PlainText(list[1].Content))
	}
	if list[1].SourceMimeType != "application/pdf" {
		t.Fatalf("unexpected source mime %q", list[1].SourceMimeType)
	}
}

func TestPGUpdateOnlySuppliedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE documents SET title = $1, updated_at = now()\nWHERE id = $2")).
		WithArgs("New title", "doc-1").
		WillReturnRows(sqlmock.NewRows(docCols).AddRow("doc-1", "New title", []byte(`{"type":"doc","content":[]}`), nil, nil, now, now))

	repo := &PGRepo{DB: db}
	title := "New title"
	doc, err := repo.Update(context.Background(), "doc-1", Patch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if doc.Title != "New title" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE documents SET").WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	doc := content.Empty()
	if _, err := repo.Update(context.Background(), "missing", Patch{Content: &doc}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
