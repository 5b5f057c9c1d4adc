// Package pollclient is the consumer-side API client. It keeps a local,
// possibly stale copy of the polls and the caller's own responses; every
// correctness-critical decision (duplicate prevention, final counts) stays
// with the server's atomic submit operation. Vote submission is optimistic:
// the local tally is bumped before the call returns and fully restored if the
// call fails.
package pollclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/tally"
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrUnknownOption = errors.New("option does not exist")
	ErrAlreadyVoted  = errors.New("vote already recorded")
	ErrPollClosed    = errors.New("poll is closed")
	ErrInFlight      = errors.New("a submission for this poll is already in flight")

	// ErrVoteRejected is the server refusing the vote (duplicate, vanished
	// option, closed poll). The optimistic update has been reverted.
	ErrVoteRejected = errors.New("vote rejected by server")

	// ErrUnavailable is a transport or server failure. The optimistic update
	// has been reverted; the user must re-initiate, there is no auto retry.
	ErrUnavailable = errors.New("poll service unavailable")
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string

	mu       sync.Mutex
	polls    map[uuid.UUID]entity.Poll
	order    []uuid.UUID
	voted    map[uuid.UUID]string
	preview  map[uuid.UUID]bool
	inFlight map[uuid.UUID]bool
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		token:      token,
		polls:      make(map[uuid.UUID]entity.Poll),
		voted:      make(map[uuid.UUID]string),
		preview:    make(map[uuid.UUID]bool),
		inFlight:   make(map[uuid.UUID]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh replaces the local cache with the server's current polls and the
// caller's responses.
func (c *Client) Refresh(ctx context.Context) error {
	const op = "pollclient.Refresh"

	var pollsResp struct {
		Polls []entity.Poll `json:"polls"`
	}
	if err := c.get(ctx, "/api/polls", &pollsResp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var responsesResp struct {
		Responses []entity.Response `json:"responses"`
	}
	if err := c.get(ctx, "/api/me/responses", &responsesResp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.polls = make(map[uuid.UUID]entity.Poll, len(pollsResp.Polls))
	c.order = c.order[:0]
	for _, poll := range pollsResp.Polls {
		c.polls[poll.ID] = poll
		c.order = append(c.order, poll.ID)
	}

	c.voted = make(map[uuid.UUID]string, len(responsesResp.Responses))
	for _, response := range responsesResp.Responses {
		c.voted[response.PollID] = response.SelectedOption
	}

	return nil
}

// Polls returns the cached polls in server order.
func (c *Client) Polls() []entity.Poll {
	c.mu.Lock()
	defer c.mu.Unlock()

	polls := make([]entity.Poll, 0, len(c.order))
	for _, id := range c.order {
		polls = append(polls, clonePoll(c.polls[id]))
	}
	return polls
}

func (c *Client) HasVoted(pollID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.voted[pollID]
	return ok
}

// Mode derives the poll's display mode from the current cache state. It is
// computed on every call, never stored.
func (c *Client) Mode(pollID uuid.UUID) (tally.Mode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	poll, ok := c.polls[pollID]
	if !ok {
		return "", ErrPollNotFound
	}

	_, hasVoted := c.voted[pollID]
	return tally.DisplayMode(poll, hasVoted, time.Now(), c.preview[pollID]), nil
}

// TogglePreview flips the "show me the results first" toggle. Toggling back
// restores the ballot for a user who is still eligible to vote.
func (c *Client) TogglePreview(pollID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview[pollID] = !c.preview[pollID]
}

// Results aggregates the locally cached tallies.
func (c *Client) Results(pollID uuid.UUID) ([]tally.OptionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	poll, ok := c.polls[pollID]
	if !ok {
		return nil, ErrPollNotFound
	}

	return tally.Results(poll.Options), nil
}

// SubmitVote casts a vote: validate locally, apply the optimistic increment,
// then call the server. While the call is out no second submission for the
// same poll is accepted, which keeps one client's actions in issuance order.
// Any failure restores the snapshot all-or-nothing.
func (c *Client) SubmitVote(ctx context.Context, pollID uuid.UUID, selectedOption string) error {
	const op = "pollclient.SubmitVote"

	c.mu.Lock()

	if c.inFlight[pollID] {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrInFlight)
	}

	poll, ok := c.polls[pollID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrPollNotFound)
	}
	if _, hasVoted := c.voted[pollID]; hasVoted {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrAlreadyVoted)
	}
	if poll.Closed(time.Now()) {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrPollClosed)
	}
	if !poll.HasOption(selectedOption) {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrUnknownOption)
	}

	// Snapshot, then speculate.
	snapshot := clonePoll(poll)

	speculative := clonePoll(poll)
	for i := range speculative.Options {
		if speculative.Options[i].Text == selectedOption {
			speculative.Options[i].Votes++
		}
	}
	c.polls[pollID] = speculative
	c.voted[pollID] = selectedOption
	c.inFlight[pollID] = true

	c.mu.Unlock()

	err := c.postVote(ctx, pollID, selectedOption)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight[pollID] = false

	if err != nil {
		// Full revert: prior poll state back, voted mark gone.
		c.polls[pollID] = snapshot
		delete(c.voted, pollID)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) postVote(ctx context.Context, pollID uuid.UUID, selectedOption string) error {
	body, err := json.Marshal(map[string]string{"selected_option": selectedOption})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/polls/"+pollID.String()+"/vote", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrVoteRejected
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: status %d", ErrVoteRejected, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func clonePoll(poll entity.Poll) entity.Poll {
	cloned := poll
	cloned.Options = make([]entity.Option, len(poll.Options))
	copy(cloned.Options, poll.Options)
	return cloned
}
