package documents

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"aari-docs/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.POST("/documents", h.create)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.update)
	rg.DELETE("/documents/:id", h.delete)
	rg.GET("/documents/:id/export", h.export)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch documents", err)
		return
	}
	respond.OK(c, docs)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := h.Svc.Create(c.Request.Context(), CreateInput{Title: req.Title, Content: req.Content})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "Invalid document content", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to create document", err)
		}
		return
	}
	c.Set("documentId", doc.ID)
	respond.Created(c, doc)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Document not found", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to fetch document", err)
		}
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	var req updateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := h.Svc.Update(c.Request.Context(), id, UpdateInput{Title: req.Title, Content: req.Content})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "Invalid document content", err)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Document not found", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to update document", err)
		}
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Document not found", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to delete document", err)
		}
		return
	}
	respond.Success(c)
}

func (h *Handler) export(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)

	doc, page, err := h.Svc.ExportHTML(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Document not found", err)
		default:
			respond.Error(c, http.StatusInternalServerError, "Failed to export document", err)
		}
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, exportFileName(doc.Title)))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// bindOptionalJSON decodes the body when there is one. An empty body is treated as {}.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
