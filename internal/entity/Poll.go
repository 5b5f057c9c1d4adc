package entity

import (
	"time"

	"github.com/google/uuid"
)

type Option struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Options   []Option   `json:"options"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Closed reports whether the poll no longer accepts votes at the given moment.
// A poll without a deadline never closes.
func (p Poll) Closed(now time.Time) bool {
	return p.Deadline != nil && p.Deadline.Before(now)
}

// HasOption reports whether text matches one of the poll's current option texts.
func (p Poll) HasOption(text string) bool {
	for _, opt := range p.Options {
		if opt.Text == text {
			return true
		}
	}
	return false
}
