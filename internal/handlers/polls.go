package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/middleware"
	"github.com/pollboard/pollboard/internal/repo"
	"github.com/pollboard/pollboard/internal/services"
)

type PollHandler struct {
	pollBoard *services.PollBoard
}

type SubmitVoteRequest struct {
	SelectedOption string `json:"selected_option" binding:"required"`
}

type CreatePollRequest struct {
	Title    string     `json:"title" binding:"required"`
	Options  []string   `json:"options" binding:"required,min=2"`
	Deadline *time.Time `json:"deadline"`
}

type UpdatePollRequest struct {
	Title    string     `json:"title" binding:"required"`
	Options  []string   `json:"options" binding:"required,min=2"`
	Deadline *time.Time `json:"deadline"`
}

func NewPollHandler(pollBoard *services.PollBoard) *PollHandler {
	return &PollHandler{pollBoard: pollBoard}
}

func (h *PollHandler) ListPolls(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	polls, err := h.pollBoard.ListPolls(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"polls": polls})
}

func (h *PollHandler) GetPoll(c *gin.Context) {
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

	preview := c.Query("preview") == "true"

	view, err := h.pollBoard.GetPollView(c.Request.Context(), user, pollID, preview)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"poll": view})
}

func (h *PollHandler) GetResults(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	results, err := h.pollBoard.Results(c.Request.Context(), pollID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *PollHandler) MyResponses(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	responses, err := h.pollBoard.UserResponses(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

func (h *PollHandler) SubmitVote(c *gin.Context) {
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

	var req SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.pollBoard.SubmitVote(c.Request.Context(), user, pollID, req.SelectedOption); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"poll_id": pollID, "selected_option": req.SelectedOption})
}

// respondError translates service and repo errors into the API's status codes.
// Anything unrecognized becomes a generic 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, services.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "email not verified"})
	case errors.Is(err, repo.ErrPollNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
	case errors.Is(err, repo.ErrAttachmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
	case errors.Is(err, repo.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"error": "vote already recorded"})
	case errors.Is(err, repo.ErrOptionNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "option no longer exists"})
	case errors.Is(err, services.ErrPollClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "poll is closed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
