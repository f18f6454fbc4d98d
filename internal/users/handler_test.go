package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func TestListUsersEnvelope(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.UpsertFromAuth(context.Background(), Identity{Email: "a@example.com", Name: "A"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	newTestRouter(svc, "").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Data []User `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Email != "a@example.com" {
		t.Fatalf("unexpected users %+v", body.Data)
	}
}

func TestMeReturnsCurrentUser(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	user, err := svc.UpsertFromAuth(context.Background(), Identity{Email: "me@example.com", Name: "Me"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := httptest.NewRecorder()
	newTestRouter(svc, user.ID).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Data User `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, body.Data.ID)
	}
}

func TestMeUnknownUser(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	resp := httptest.NewRecorder()
	newTestRouter(svc, "ghost").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	newTestRouter(svc, "").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
