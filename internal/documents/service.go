package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aari-docs/internal/content"
	"aari-docs/internal/events"
	"aari-docs/internal/shared/metrics"
	"aari-docs/internal/shared/storage/object"
	"aari-docs/internal/shared/telemetry"
)

// Indexer keeps a search index in step with document mutations.
type Indexer interface {
	IndexDocument(ctx context.Context, doc Document) error
	RemoveDocument(ctx context.Context, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Repo    DocumentsRepo
	Store   object.Store
	Indexer Indexer
	Events  events.Publisher
	Now     func() time.Time
}

// CreateInput is the payload for creating a document. A nil Title or empty
// Content falls back to the defaults.
type CreateInput struct {
	Title   *string
	Content json.RawMessage
}

// UpdateInput is the payload for a partial update. Absent fields are untouched.
type UpdateInput struct {
	Title   *string
	Content json.RawMessage
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// List returns all documents, newest-updated first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx)
}

// Create stores a new document, defaulting the title to "Untitled" and the
// content to an empty tree.
func (s *Service) Create(ctx context.Context, in CreateInput) (Document, error) {
	title := DefaultTitle
	if in.Title != nil && *in.Title != "" {
		title = *in.Title
	}
	doc, err := content.Parse(in.Content)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.insert(ctx, Document{Title: title, Content: doc})
}

// CreateImported stores a document built from an uploaded file.
func (s *Service) CreateImported(ctx context.Context, title string, doc content.Doc, source object.Object) (Document, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return s.insert(ctx, Document{
		Title:          title,
		Content:        doc,
		SourceKey:      source.Key,
		SourceMimeType: source.MimeType,
	})
}

func (s *Service) insert(ctx context.Context, doc Document) (Document, error) {
	now := s.now()
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	metrics.IncDocumentsCreated()
	s.index(ctx, doc)

	evt := events.New(events.DocumentCreated)
	evt.DocumentID = doc.ID
	events.Emit(ctx, s.Events, evt)
	return doc, nil
}

// Get returns a document by id.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Update replaces the supplied fields. Content is a full replace.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Document, error) {
	var patch Patch
	patch.Title = in.Title
	if len(in.Content) > 0 {
		doc, err := content.Parse(in.Content)
		if err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		patch.Content = &doc
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}
	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return Document{}, err
	}
	s.index(ctx, updated)
	return updated, nil
}

// Delete removes a document together with its comments and replies.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncDocumentsDeleted()

	if doc.SourceKey != "" && s.Store != nil {
		if err := s.Store.Delete(ctx, doc.SourceKey); err != nil && !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("documents.source_delete_failed", map[string]any{
				"document_id": id,
				"error":       err,
			})
		}
	}
	if s.Indexer != nil {
		if err := s.Indexer.RemoveDocument(ctx, id); err != nil {
			telemetry.Warn("documents.unindex_failed", map[string]any{"document_id": id, "error": err})
		}
	}

	evt := events.New(events.DocumentDeleted)
	evt.DocumentID = id
	events.Emit(ctx, s.Events, evt)
	return nil
}

// ExportHTML renders a document as a standalone HTML page.
func (s *Service) ExportHTML(ctx context.Context, id string) (Document, string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, "", err
	}
	return doc, renderPage(doc), nil
}

func (s *Service) index(ctx context.Context, doc Document) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexDocument(ctx, doc); err != nil {
		telemetry.Warn("documents.index_failed", map[string]any{"document_id": doc.ID, "error": err})
	}
}
