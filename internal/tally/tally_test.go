package tally

import (
	"testing"
	"time"

	"github.com/pollboard/pollboard/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults_ZeroVotes(t *testing.T) {
	options := []entity.Option{
		{Text: "Red", Votes: 0},
		{Text: "Blue", Votes: 0},
		{Text: "Green", Votes: 0},
	}

	results := Results(options)

	require.Len(t, results, 3)
	for _, result := range results {
		assert.Equal(t, 0.0, result.Percentage)
		assert.Equal(t, 0, result.Votes)
	}
}

func TestResults_EvenSplit(t *testing.T) {
	options := []entity.Option{
		{Text: "Red", Votes: 2},
		{Text: "Blue", Votes: 2},
	}

	results := Results(options)

	require.Len(t, results, 2)
	assert.Equal(t, 4, TotalVotes(options))
	assert.Equal(t, 50.0, results[0].Percentage)
	assert.Equal(t, 50.0, results[1].Percentage)
}

func TestResults_KeepsOptionOrder(t *testing.T) {
	options := []entity.Option{
		{Text: "C", Votes: 1},
		{Text: "A", Votes: 3},
		{Text: "B", Votes: 0},
	}

	results := Results(options)

	require.Len(t, results, 3)
	assert.Equal(t, "C", results[0].Text)
	assert.Equal(t, "A", results[1].Text)
	assert.Equal(t, "B", results[2].Text)
	assert.Equal(t, 25.0, results[0].Percentage)
	assert.Equal(t, 75.0, results[1].Percentage)
	assert.Equal(t, 0.0, results[2].Percentage)
}

func TestDisplayMode(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := entity.Poll{Title: "open"}
	withFutureDeadline := entity.Poll{Title: "future", Deadline: &future}
	expired := entity.Poll{Title: "expired", Deadline: &past}

	tests := []struct {
		name     string
		poll     entity.Poll
		hasVoted bool
		preview  bool
		want     Mode
	}{
		{"eligible user sees ballot", open, false, false, ModeBallot},
		{"voted user sees results", open, true, false, ModeResults},
		{"voted user sees results even before deadline", withFutureDeadline, true, false, ModeResults},
		{"expired poll shows results to non-voter", expired, false, false, ModeResults},
		{"preview shows results to eligible user", open, false, true, ModeResults},
		{"preview off restores ballot", open, false, false, ModeBallot},
		{"future deadline keeps ballot open", withFutureDeadline, false, false, ModeBallot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayMode(tt.poll, tt.hasVoted, now, tt.preview))
		})
	}
}
