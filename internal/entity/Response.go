package entity

import (
	"time"

	"github.com/google/uuid"
)

// Response is the durable proof that a user voted on a poll.
// At most one exists per (poll, user) pair.
type Response struct {
	PollID         uuid.UUID `json:"poll_id"`
	UserID         string    `json:"user_id"`
	SelectedOption string    `json:"selected_option"`
	VotedAt        time.Time `json:"voted_at"`
}
