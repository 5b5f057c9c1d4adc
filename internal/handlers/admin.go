package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/middleware"
	"github.com/pollboard/pollboard/internal/services"
)

// Exporter is the one-shot spreadsheet export consumed by the admin endpoint.
type Exporter interface {
	Export(ctx context.Context, polls []entity.Poll, responses []entity.Response) error
}

type AdminHandler struct {
	pollBoard *services.PollBoard
	exporter  Exporter
}

// NewAdminHandler wires the admin surface. exporter may be nil when the
// deployment has no spreadsheet configured; the endpoint then reports 503.
func NewAdminHandler(pollBoard *services.PollBoard, exporter Exporter) *AdminHandler {
	return &AdminHandler{pollBoard: pollBoard, exporter: exporter}
}

func (h *AdminHandler) CreatePoll(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	pollID, err := h.pollBoard.CreatePoll(c.Request.Context(), user, req.Title, req.Options, req.Deadline)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"poll_id": pollID})
}

func (h *AdminHandler) UpdatePoll(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	var req UpdatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.pollBoard.UpdatePoll(c.Request.Context(), user, pollID, req.Title, req.Options, req.Deadline); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"poll_id": pollID})
}

func (h *AdminHandler) DeletePoll(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	if err := h.pollBoard.DeletePoll(c.Request.Context(), user, pollID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"poll_id": pollID})
}

func (h *AdminHandler) AttachFile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	att, err := h.pollBoard.AttachFile(c.Request.Context(), user, pollID, fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attachment": att})
}

func (h *AdminHandler) RemoveAttachment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	if err := h.pollBoard.RemoveAttachment(c.Request.Context(), user, pollID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"poll_id": pollID})
}

func (h *AdminHandler) AuditLog(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	logs, err := h.pollBoard.AuditLog(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *AdminHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "spreadsheet export is not configured"})
		return
	}

	polls, responses, err := h.pollBoard.ExportData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.exporter.Export(c.Request.Context(), polls, responses); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "export failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "exported", "polls": len(polls), "responses": len(responses)})
}
