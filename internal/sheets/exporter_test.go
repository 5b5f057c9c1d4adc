package sheets

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRows_HeaderOnlyWithoutPolls(t *testing.T) {
	rows := BuildRows(nil, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, "Poll ID", rows[0][0])
	assert.Equal(t, "Response Voted At", rows[0][7])
}

func TestBuildRows_OneRowPerResponse(t *testing.T) {
	pollID := uuid.New()
	votedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	polls := []entity.Poll{{
		ID:    pollID,
		Title: "Color",
		Options: []entity.Option{
			{Text: "Red", Votes: 2},
			{Text: "Blue", Votes: 0},
		},
	}}
	responses := []entity.Response{
		{PollID: pollID, UserID: "user-1", SelectedOption: "Red", VotedAt: votedAt},
		{PollID: pollID, UserID: "user-2", SelectedOption: "Red", VotedAt: votedAt},
	}

	rows := BuildRows(polls, responses)

	// Header, two Red responses, one blank-response row for Blue.
	require.Len(t, rows, 4)

	assert.Equal(t, []interface{}{
		pollID.String(), "Color", "Red", 2, "100.00",
		"user-1", "Red", "2026-03-14 09:30:00",
	}, rows[1])
	assert.Equal(t, "user-2", rows[2][5])

	assert.Equal(t, []interface{}{
		pollID.String(), "Color", "Blue", 0, "0.00",
		"", "", "",
	}, rows[3])
}

func TestBuildRows_ResponsesScopedToTheirPoll(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	polls := []entity.Poll{
		{ID: first, Title: "Color", Options: []entity.Option{{Text: "Red", Votes: 1}}},
		{ID: second, Title: "Lunch", Options: []entity.Option{{Text: "Red", Votes: 0}}},
	}
	responses := []entity.Response{
		{PollID: first, UserID: "user-1", SelectedOption: "Red", VotedAt: time.Now()},
	}

	rows := BuildRows(polls, responses)

	require.Len(t, rows, 3)
	assert.Equal(t, "user-1", rows[1][5])
	// The second poll shares the option text but none of the responses.
	assert.Equal(t, "", rows[2][5])
}

func TestBuildRows_ZeroVotePollShowsZeroPercent(t *testing.T) {
	polls := []entity.Poll{{
		ID:    uuid.New(),
		Title: "Color",
		Options: []entity.Option{
			{Text: "Red", Votes: 0},
			{Text: "Blue", Votes: 0},
		},
	}}

	rows := BuildRows(polls, nil)

	require.Len(t, rows, 3)
	assert.Equal(t, "0.00", rows[1][4])
	assert.Equal(t, "0.00", rows[2][4])
}
