package imports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"aari-docs/internal/content"
	"aari-docs/internal/documents"
	"aari-docs/internal/shared/storage/object"
	localstore "aari-docs/internal/shared/storage/object/local"
)

type failingCreator struct{}

func (failingCreator) CreateImported(ctx context.Context, title string, doc content.Doc, source object.Object) (documents.Document, error) {
	return documents.Document{}, errors.New("db down")
}

func TestImportStoresSourceAndCreatesDocument(t *testing.T) {
	store := localstore.New(t.TempDir())
	repo := documents.NewMemoryRepo()
	docs := &documents.Service{Repo: repo, Store: store}
	svc := &Service{Documents: docs, Store: store}

	doc, err := svc.Import(context.Background(), Input{
		FileName: "meeting-notes.txt",
		MimeType: "text/plain",
		Body:     strings.NewReader("Agenda\nBudget review"),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if doc.Title != "meeting-notes" {
		t.Fatalf("expected title from file name, got %q", doc.Title)
	}
	if got := content.PlainText(doc.Content); got != "Agenda\nBudget review" {
		t.Fatalf("unexpected text %q", got)
	}
	if doc.SourceKey == "" {
		t.Fatalf("expected source key to be recorded")
	}

	rc, err := store.Open(context.Background(), doc.SourceKey)
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	raw, _ := io.ReadAll(rc)
	rc.Close()
	if string(raw) != "Agenda\nBudget review" {
		t.Fatalf("unexpected stored bytes %q", raw)
	}

	if err := docs.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(context.Background(), doc.SourceKey); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected source removed with document, got %v", err)
	}
}

func TestImportRejectsBadUploads(t *testing.T) {
	svc := &Service{Documents: &documents.Service{Repo: documents.NewMemoryRepo()}}
	ctx := context.Background()

	cases := []Input{
		{FileName: "a.txt"},
		{FileName: "../etc/passwd", Body: strings.NewReader("x")},
		{FileName: "empty.txt", Body: strings.NewReader("")},
		{FileName: "blank.txt", MimeType: "text/plain", Body: strings.NewReader("  \n ")},
		{FileName: "image.png", MimeType: "image/png", Body: strings.NewReader("\x89PNG")},
		{FileName: "big.txt", MimeType: "text/plain", Body: bytes.NewReader(bytes.Repeat([]byte("a"), MaxUploadSize+1))},
	}
	for _, in := range cases {
		if _, err := svc.Import(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", in.FileName, err)
		}
	}
}

func TestImportDiscardsSourceWhenCreateFails(t *testing.T) {
	dir := t.TempDir()
	store := localstore.New(dir)
	svc := &Service{Documents: failingCreator{}, Store: store}

	_, err := svc.Import(context.Background(), Input{FileName: "a.txt", MimeType: "text/plain", Body: strings.NewReader("hello")})
	if err == nil || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestHandlerImport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := documents.NewMemoryRepo()
	svc := &Service{Documents: &documents.Service{Repo: repo}}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("title", "Imported"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fileWriter, err := writer.CreateFormFile("file", "notes.md")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("# Heading\nbody")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/documents/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Data documents.Document `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.Title != "Imported" {
		t.Fatalf("unexpected title %q", created.Data.Title)
	}
	if len(created.Data.Content.Content) != 2 || created.Data.Content.Content[0].Type != content.TypeHeading {
		t.Fatalf("unexpected content %+v", created.Data.Content)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/documents/import", strings.NewReader(""))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", resp.Code)
	}
}
