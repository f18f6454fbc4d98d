package documents

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() (*gin.Engine, *MemoryRepo) {
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	r := gin.New()
	NewHandler(&Service{Repo: repo}).RegisterRoutes(r.Group("/api"))
	return r, repo
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

type docEnvelope struct {
	Data  Document `json:"data"`
	Error string   `json:"error"`
}

func TestCreateGetUpdateDeleteFlow(t *testing.T) {
	r, _ := newTestRouter()

	resp := doJSON(r, http.MethodPost, "/api/documents", "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created docEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.Title != "Untitled" {
		t.Fatalf("expected Untitled, got %q", created.Data.Title)
	}
	if !strings.Contains(resp.Body.String(), `"content":{"type":"doc","content":[]}`) {
		t.Fatalf("expected empty doc tree in %s", resp.Body.String())
	}

	id := created.Data.ID
	resp = doJSON(r, http.MethodPatch, "/api/documents/"+id, `{"title":"Renamed"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = doJSON(r, http.MethodGet, "/api/documents/"+id, "")
	var got docEnvelope
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	if got.Data.Title != "Renamed" {
		t.Fatalf("expected Renamed, got %q", got.Data.Title)
	}

	resp = doJSON(r, http.MethodDelete, "/api/documents/"+id, "")
	if resp.Code != http.StatusOK || strings.TrimSpace(resp.Body.String()) != `{"success":true}` {
		t.Fatalf("unexpected delete response %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(r, http.MethodGet, "/api/documents/"+id, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var missing docEnvelope
	_ = json.Unmarshal(resp.Body.Bytes(), &missing)
	if missing.Error != "Document not found" {
		t.Fatalf("unexpected error %q", missing.Error)
	}
}

func TestCreateRejectsBadContent(t *testing.T) {
	r, repo := newTestRouter()

	resp := doJSON(r, http.MethodPost, "/api/documents", `{"content":42}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if len(repo.docs) != 0 {
		t.Fatalf("expected nothing persisted")
	}

	resp = doJSON(r, http.MethodPost, "/api/documents", `{not json`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	r, _ := newTestRouter()
	resp := doJSON(r, http.MethodPatch, "/api/documents/nope", `{"title":"x"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestExportRendersHTML(t *testing.T) {
	r, _ := newTestRouter()
	resp := doJSON(r, http.MethodPost, "/api/documents", `{"title":"Notes","content":{"type":"doc","content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Intro"}]}]}}`)
	var created docEnvelope
	_ = json.Unmarshal(resp.Body.Bytes(), &created)

	resp = doJSON(r, http.MethodGet, "/api/documents/"+created.Data.ID+"/export", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "<h2>Intro</h2>") {
		t.Fatalf("missing heading in %s", resp.Body.String())
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "Notes.html") {
		t.Fatalf("unexpected disposition %q", resp.Header().Get("Content-Disposition"))
	}
}
