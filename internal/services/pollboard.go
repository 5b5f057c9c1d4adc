package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/lib/sl"
	"github.com/pollboard/pollboard/internal/repo"
	"github.com/pollboard/pollboard/internal/tally"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrPollClosed       = errors.New("poll is closed")
)

type PollBoard struct {
	log               *slog.Logger
	pollStorage       PollStorage
	voteStorage       VoteStorage
	attachmentStorage AttachmentStorage
	logStorage        LogStorage
	files             FileStore
	maxUploadBytes    int64
}

type PollStorage interface {
	SavePoll(ctx context.Context, title string, options []string, deadline *time.Time, createdBy string) (uuid.UUID, error)
	GetPollByID(ctx context.Context, id uuid.UUID) (entity.Poll, error)
	GetPolls(ctx context.Context) ([]entity.Poll, error)
	UpdatePoll(ctx context.Context, id uuid.UUID, title string, options []string, deadline *time.Time) error
	DeletePoll(ctx context.Context, id uuid.UUID) error
}

type VoteStorage interface {
	SubmitVote(ctx context.Context, pollID uuid.UUID, userID, selectedOption string) error
	HasVoted(ctx context.Context, pollID uuid.UUID, userID string) (bool, error)
	GetResponsesByUser(ctx context.Context, userID string) ([]entity.Response, error)
	GetResponses(ctx context.Context) ([]entity.Response, error)
}

type AttachmentStorage interface {
	SaveAttachment(ctx context.Context, att entity.Attachment) error
	GetAttachment(ctx context.Context, pollID uuid.UUID) (entity.Attachment, error)
	DeleteAttachment(ctx context.Context, pollID uuid.UUID) error
}

// LogStorage keeps the durable audit trail. One record per mutation.
type LogStorage interface {
	SaveLog(ctx context.Context, log *entity.Log) (int64, error)
	GetLogs(ctx context.Context) ([]entity.Log, error)
}

// FileStore is the external object store holding attachment files.
type FileStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (publicURL string, err error)
	Delete(ctx context.Context, path string) error
}

// PollView is a poll as one user sees it: the ballot or the results.
type PollView struct {
	entity.Poll
	Attachment *entity.Attachment `json:"attachment,omitempty"`
	HasVoted   bool               `json:"has_voted"`
	Mode       tally.Mode         `json:"mode"`
}

func NewPollBoard(
	log *slog.Logger,
	pollStorage PollStorage,
	voteStorage VoteStorage,
	attachmentStorage AttachmentStorage,
	logStorage LogStorage,
	files FileStore,
	maxUploadBytes int64,
) *PollBoard {
	return &PollBoard{
		log:               log,
		pollStorage:       pollStorage,
		voteStorage:       voteStorage,
		attachmentStorage: attachmentStorage,
		logStorage:        logStorage,
		files:             files,
		maxUploadBytes:    maxUploadBytes,
	}
}

func (p *PollBoard) CreatePoll(ctx context.Context, user entity.User, title string, options []string, deadline *time.Time) (uuid.UUID, error) {
	const op = "PollBoard.CreatePoll"

	if !user.IsAdmin() {
		return uuid.Nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := validatePollInput(title, options); err != nil {
		return uuid.Nil, err
	}

	pollID, err := p.pollStorage.SavePoll(ctx, title, options, deadline, user.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := p.logStorage.SaveLog(ctx, &entity.Log{UserID: user.ID, Action: op, PollID: pollID}); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("poll created", slog.String("op", op), slog.String("pollID", pollID.String()), slog.String("userID", user.ID))

	return pollID, nil
}

func (p *PollBoard) GetPollByID(ctx context.Context, id uuid.UUID) (entity.Poll, error) {
	const op = "PollBoard.GetPollByID"

	poll, err := p.pollStorage.GetPollByID(ctx, id)
	if err != nil {
		return entity.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, nil
}

// ListPolls returns every poll as the given user sees it right now. The
// display mode is derived per call, never cached.
func (p *PollBoard) ListPolls(ctx context.Context, user entity.User) ([]PollView, error) {
	const op = "PollBoard.ListPolls"

	polls, err := p.pollStorage.GetPolls(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	responses, err := p.voteStorage.GetResponsesByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	voted := make(map[uuid.UUID]bool, len(responses))
	for _, r := range responses {
		voted[r.PollID] = true
	}

	now := time.Now()
	views := make([]PollView, len(polls))
	for i, poll := range polls {
		view := PollView{
			Poll:     poll,
			HasVoted: voted[poll.ID],
			Mode:     tally.DisplayMode(poll, voted[poll.ID], now, false),
		}

		att, err := p.attachmentStorage.GetAttachment(ctx, poll.ID)
		switch {
		case err == nil:
			view.Attachment = &att
		case errors.Is(err, repo.ErrAttachmentNotFound):
			// most polls have none
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		views[i] = view
	}

	return views, nil
}

// GetPollView is the single-poll variant of ListPolls. The preview flag asks
// for results before voting; it is a toggle, so a later call without it shows
// the ballot again while the user is still eligible.
func (p *PollBoard) GetPollView(ctx context.Context, user entity.User, id uuid.UUID, preview bool) (PollView, error) {
	const op = "PollBoard.GetPollView"

	poll, err := p.pollStorage.GetPollByID(ctx, id)
	if err != nil {
		return PollView{}, fmt.Errorf("%s: %w", op, err)
	}

	hasVoted, err := p.voteStorage.HasVoted(ctx, id, user.ID)
	if err != nil {
		return PollView{}, fmt.Errorf("%s: %w", op, err)
	}

	view := PollView{
		Poll:     poll,
		HasVoted: hasVoted,
		Mode:     tally.DisplayMode(poll, hasVoted, time.Now(), preview),
	}

	att, err := p.attachmentStorage.GetAttachment(ctx, id)
	switch {
	case err == nil:
		view.Attachment = &att
	case errors.Is(err, repo.ErrAttachmentNotFound):
	default:
		return PollView{}, fmt.Errorf("%s: %w", op, err)
	}

	return view, nil
}

func (p *PollBoard) UpdatePoll(ctx context.Context, user entity.User, id uuid.UUID, title string, options []string, deadline *time.Time) error {
	const op = "PollBoard.UpdatePoll"

	if !user.IsAdmin() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := validatePollInput(title, options); err != nil {
		return err
	}

	if err := p.pollStorage.UpdatePoll(ctx, id, title, options, deadline); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := p.logStorage.SaveLog(ctx, &entity.Log{UserID: user.ID, Action: op, PollID: id}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("poll updated", slog.String("op", op), slog.String("pollID", id.String()), slog.String("userID", user.ID))

	return nil
}

// DeletePoll removes the poll record with its responses and attachment row.
// Cleanup of the attachment object in the external store is best effort: a
// failure there is logged and never blocks the delete.
func (p *PollBoard) DeletePoll(ctx context.Context, user entity.User, id uuid.UUID) error {
	const op = "PollBoard.DeletePoll"

	if !user.IsAdmin() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	var objectPath string
	att, err := p.attachmentStorage.GetAttachment(ctx, id)
	if err == nil {
		objectPath = att.ObjectPath
	} else if !errors.Is(err, repo.ErrAttachmentNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.pollStorage.DeletePoll(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if objectPath != "" {
		if err := p.files.Delete(ctx, objectPath); err != nil {
			p.log.Warn("failed to delete attachment object",
				slog.String("op", op), slog.String("pollID", id.String()), slog.String("path", objectPath), sl.Err(err))
		}
	}

	if _, err := p.logStorage.SaveLog(ctx, &entity.Log{UserID: user.ID, Action: op, PollID: id}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("poll deleted", slog.String("op", op), slog.String("pollID", id.String()), slog.String("userID", user.ID))

	return nil
}

// SubmitVote validates the selection and delegates the authoritative
// insert-and-increment to the store's single transaction. The local checks are
// best effort; the store rejects duplicates and vanished options on its own.
func (p *PollBoard) SubmitVote(ctx context.Context, user entity.User, pollID uuid.UUID, selectedOption string) error {
	const op = "PollBoard.SubmitVote"

	if !user.EmailVerified {
		return fmt.Errorf("%s: %w", op, ErrEmailNotVerified)
	}

	if strings.TrimSpace(selectedOption) == "" {
		return fmt.Errorf("%w: no option selected", ErrValidation)
	}

	poll, err := p.pollStorage.GetPollByID(ctx, pollID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !poll.HasOption(selectedOption) {
		return fmt.Errorf("%w: option %q does not exist", ErrValidation, selectedOption)
	}

	if poll.Closed(time.Now()) {
		return fmt.Errorf("%s: %w", op, ErrPollClosed)
	}

	hasVoted, err := p.voteStorage.HasVoted(ctx, pollID, user.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if hasVoted {
		return fmt.Errorf("%s: %w", op, repo.ErrAlreadyVoted)
	}

	if err := p.voteStorage.SubmitVote(ctx, pollID, user.ID, selectedOption); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := p.logStorage.SaveLog(ctx, &entity.Log{UserID: user.ID, Action: op, PollID: pollID, Option: &selectedOption}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("vote recorded",
		slog.String("op", op), slog.String("pollID", pollID.String()), slog.String("userID", user.ID))

	return nil
}

func (p *PollBoard) Results(ctx context.Context, pollID uuid.UUID) ([]tally.OptionResult, error) {
	const op = "PollBoard.Results"

	poll, err := p.pollStorage.GetPollByID(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tally.Results(poll.Options), nil
}

func (p *PollBoard) UserResponses(ctx context.Context, user entity.User) ([]entity.Response, error) {
	const op = "PollBoard.UserResponses"

	responses, err := p.voteStorage.GetResponsesByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return responses, nil
}

// AuditLog returns the full audit trail, newest first. Admin only.
func (p *PollBoard) AuditLog(ctx context.Context, user entity.User) ([]entity.Log, error) {
	const op = "PollBoard.AuditLog"

	if !user.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	logs, err := p.logStorage.GetLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return logs, nil
}

// ExportData collects everything the spreadsheet export needs in one place.
func (p *PollBoard) ExportData(ctx context.Context) ([]entity.Poll, []entity.Response, error) {
	const op = "PollBoard.ExportData"

	polls, err := p.pollStorage.GetPolls(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	responses, err := p.voteStorage.GetResponses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return polls, responses, nil
}

func validatePollInput(title string, options []string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is empty", ErrValidation)
	}

	if len(options) < 2 {
		return fmt.Errorf("%w: a poll needs at least two options", ErrValidation)
	}

	seen := make(map[string]bool, len(options))
	for _, text := range options {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: option text is empty", ErrValidation)
		}
		if seen[text] {
			return fmt.Errorf("%w: duplicate option %q", ErrValidation, text)
		}
		seen[text] = true
	}

	return nil
}
