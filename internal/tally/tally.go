// Package tally holds the pure poll arithmetic: vote aggregation and the
// ballot/results display decision. Every rendering surface (HTTP handlers,
// the export job, the API client) goes through these functions so rounding
// and edge cases stay consistent.
package tally

import (
	"time"

	"github.com/pollboard/pollboard/internal/entity"
)

type Mode string

const (
	ModeBallot  Mode = "ballot"
	ModeResults Mode = "results"
)

type OptionResult struct {
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// DisplayMode decides whether a user sees the ballot or the results of a poll.
// Results win whenever the user has voted, the deadline has passed, or the
// user asked to preview results. The preview is a toggle, not a transition:
// calling again with preview=false restores the ballot for an eligible user.
func DisplayMode(poll entity.Poll, hasVoted bool, now time.Time, preview bool) Mode {
	if hasVoted || poll.Closed(now) || preview {
		return ModeResults
	}
	return ModeBallot
}

// Results computes per-option percentages. A poll with no votes reports 0 for
// every option rather than dividing by zero. Percentages are raw float64;
// rounding is up to the caller and is not corrected to sum to exactly 100.
func Results(options []entity.Option) []OptionResult {
	total := TotalVotes(options)

	results := make([]OptionResult, len(options))
	for i, opt := range options {
		var pct float64
		if total > 0 {
			pct = float64(opt.Votes) / float64(total) * 100
		}
		results[i] = OptionResult{Text: opt.Text, Votes: opt.Votes, Percentage: pct}
	}

	return results
}

func TotalVotes(options []entity.Option) int {
	total := 0
	for _, opt := range options {
		total += opt.Votes
	}
	return total
}
