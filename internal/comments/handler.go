package comments

import (
	"errors"
	"io"
	"net/http"
	"strings"

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

// RegisterRoutes attaches comment and reply routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/comments", h.list)
	rg.POST("/documents/:id/comments", h.create)
	rg.GET("/documents/:id/highlights", h.highlights)

	rg.PATCH("/comments/:id", h.update)
	rg.DELETE("/comments/:id", h.delete)
	rg.POST("/comments/:id/resolve", h.resolve)
	rg.POST("/comments/:id/replies", h.createReply)

	rg.PATCH("/replies/:id", h.updateReply)
	rg.DELETE("/replies/:id", h.deleteReply)
}

func (h *Handler) list(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	status, ok := ParseStatus(c.Query("status"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, "Invalid status filter", nil)
		return
	}
	list, err := h.Svc.ListByDocument(c.Request.Context(), documentID, status)
	if err != nil {
		h.fail(c, err, "Failed to fetch comments")
		return
	}
	respond.OK(c, list)
}

func (h *Handler) create(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	comment, err := h.Svc.Create(c.Request.Context(), documentID, CreateInput{
		UserID:          req.UserID,
		Content:         req.Content,
		HighlightedText: req.HighlightedText,
		SelectionFrom:   req.SelectionFrom,
		SelectionTo:     req.SelectionTo,
	})
	if err != nil {
		h.fail(c, err, "Failed to create comment")
		return
	}
	c.Set("commentId", comment.ID)
	respond.Created(c, comment)
}

func (h *Handler) highlights(c *gin.Context) {
	documentID := c.Param("id")
	c.Set("documentId", documentID)

	list, err := h.Svc.Highlights(c.Request.Context(), documentID)
	if err != nil {
		h.fail(c, err, "Failed to compute highlights")
		return
	}
	respond.OK(c, list)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	c.Set("commentId", id)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	comment, err := h.Svc.UpdateContent(c.Request.Context(), id, req.Content)
	if err != nil {
		h.fail(c, err, "Failed to update comment")
		return
	}
	respond.OK(c, comment)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("commentId", id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "Failed to delete comment")
		return
	}
	respond.Success(c)
}

func (h *Handler) resolve(c *gin.Context) {
	id := c.Param("id")
	c.Set("commentId", id)

	var req resolveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	resolved := true
	if req.IsResolved != nil {
		resolved = *req.IsResolved
	}
	comment, err := h.Svc.SetResolved(c.Request.Context(), id, resolved)
	if err != nil {
		h.fail(c, err, "Failed to resolve comment")
		return
	}
	respond.OK(c, comment)
}

func (h *Handler) createReply(c *gin.Context) {
	commentID := c.Param("id")
	c.Set("commentId", commentID)

	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	reply, err := h.Svc.CreateReply(c.Request.Context(), commentID, ReplyInput{UserID: req.UserID, Content: req.Content})
	if err != nil {
		h.fail(c, err, "Failed to create reply")
		return
	}
	respond.Created(c, reply)
}

func (h *Handler) updateReply(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	reply, err := h.Svc.UpdateReply(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		h.fail(c, err, "Failed to update reply")
		return
	}
	c.Set("commentId", reply.CommentID)
	respond.OK(c, reply)
}

func (h *Handler) deleteReply(c *gin.Context) {
	if err := h.Svc.DeleteReply(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete reply")
		return
	}
	respond.Success(c)
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, invalidMessage(err), err)
	case errors.Is(err, ErrUnknownUser):
		respond.Error(c, http.StatusBadRequest, "Unknown user", err)
	case errors.Is(err, ErrDocumentNotFound):
		respond.Error(c, http.StatusNotFound, "Document not found", err)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "Comment not found", err)
	case errors.Is(err, ErrReplyNotFound):
		respond.Error(c, http.StatusNotFound, "Reply not found", err)
	default:
		respond.Error(c, http.StatusInternalServerError, fallback, err)
	}
}

func invalidMessage(err error) string {
	if msg, ok := strings.CutPrefix(err.Error(), ErrInvalidInput.Error()+": "); ok && msg != "" {
		return msg
	}
	return "Invalid request"
}
