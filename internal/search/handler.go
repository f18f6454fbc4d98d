package search

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aari-docs/internal/shared/server/respond"
)

// Handler exposes GET /search.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the search route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	q := Query{Text: c.Query("q")}
	switch t := ResultType(c.Query("type")); t {
	case "", ResultDocument, ResultComment:
		q.FilterType = t
	default:
		respond.Error(c, http.StatusBadRequest, "Invalid result type", nil)
		return
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > 100 {
			respond.Error(c, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		q.Limit = limit
	}
	respond.OK(c, h.Svc.Search(c.Request.Context(), q))
}
