package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aari-docs/internal/shared/server/middleware"
	"aari-docs/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.list)
	rg.GET("/me", h.me)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch users", err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "User not found", err)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch user", err)
		return
	}
	respond.OK(c, user)
}
