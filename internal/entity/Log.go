package entity

import (
	"time"

	"github.com/google/uuid"
)

// Log is one audit record: who performed which action on which poll. Records
// outlive the poll they describe.
type Log struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	PollID    uuid.UUID `json:"poll_id"`
	Option    *string   `json:"option,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
