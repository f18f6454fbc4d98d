// Package imports creates documents from uploaded files.
package imports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"aari-docs/internal/content"
	"aari-docs/internal/documents"
	"aari-docs/internal/extract"
	"aari-docs/internal/shared/storage/object"
	"aari-docs/internal/shared/telemetry"
	"aari-docs/internal/shared/util"
)

// MaxUploadSize bounds an imported file.
const MaxUploadSize = 10 << 20 // 10MB

const namespace = "imports"

var ErrInvalidInput = errors.New("invalid input")

// Creator stores the imported document.
type Creator interface {
	CreateImported(ctx context.Context, title string, doc content.Doc, source object.Object) (documents.Document, error)
}

// Service turns uploads into documents, keeping the original file in the object store.
type Service struct {
	Documents Creator
	Store     object.Store
}

// Input is one uploaded file.
type Input struct {
	Title    string
	FileName string
	MimeType string
	Body     io.Reader
}

// Import converts and saves the upload. When Title is blank the file name
// without extension is used.
func (s *Service) Import(ctx context.Context, in Input) (documents.Document, error) {
	if in.Body == nil {
		return documents.Document{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	fileName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return documents.Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, MaxUploadSize+1))
	if err != nil {
		return documents.Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return documents.Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if len(data) > MaxUploadSize {
		return documents.Document{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxUploadSize)
	}

	doc, err := extract.ToDoc(ctx, data, in.MimeType, fileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) || errors.Is(err, extract.ErrEmpty) {
			return documents.Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return documents.Document{}, err
	}

	var source object.Object
	if s.Store != nil {
		source, err = s.Store.Save(ctx, namespace, fileName, bytes.NewReader(data))
		if err != nil {
			return documents.Document{}, fmt.Errorf("store upload: %w", err)
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSpace(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
	}

	created, err := s.Documents.CreateImported(ctx, title, doc, source)
	if err != nil {
		s.discard(ctx, source)
		return documents.Document{}, err
	}
	telemetry.Info("imports.created", map[string]any{
		"document_id": created.ID,
		"file_name":   fileName,
		"size_bytes":  len(data),
		"blocks":      len(doc.Content),
	})
	return created, nil
}

func (s *Service) discard(ctx context.Context, source object.Object) {
	if s.Store == nil || source.Key == "" {
		return
	}
	if err := s.Store.Delete(ctx, source.Key); err != nil {
		telemetry.Warn("imports.discard_failed", map[string]any{"key": source.Key, "error": err})
	}
}
