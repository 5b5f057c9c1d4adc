package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/repo"
)

// SubmitVote records a response and increments the matching option counter in
// one transaction: both effects or neither. A second vote by the same user on
// the same poll fails on the (poll_id, user_id) primary key and an option that
// no longer exists fails the counter update, rolling the insert back.
func (s *Storage) SubmitVote(ctx context.Context, pollID uuid.UUID, userID, selectedOption string) error {
	const op = "storage.postgres.SubmitVote"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO poll_responses (poll_id, user_id, selected_option) VALUES ($1, $2, $3)`,
		pollID, userID, selectedOption)
	if err != nil {
		if isPqError(err, pqUniqueViolation) {
			return fmt.Errorf("%s: %w", op, repo.ErrAlreadyVoted)
		}
		if isPqError(err, pqForeignKeyViolation) {
			return fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE poll_options SET votes = votes + 1 WHERE poll_id = $1 AND text = $2`,
		pollID, selectedOption)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, repo.ErrOptionNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) HasVoted(ctx context.Context, pollID uuid.UUID, userID string) (bool, error) {
	const op = "storage.postgres.HasVoted"

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM poll_responses WHERE poll_id = $1 AND user_id = $2)`,
		pollID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (s *Storage) GetResponsesByUser(ctx context.Context, userID string) ([]entity.Response, error) {
	const op = "storage.postgres.GetResponsesByUser"

	query := `SELECT poll_id, user_id, selected_option, voted_at FROM poll_responses WHERE user_id = $1 ORDER BY voted_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var responses []entity.Response
	for rows.Next() {
		var response entity.Response
		if err := rows.Scan(&response.PollID, &response.UserID, &response.SelectedOption, &response.VotedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		responses = append(responses, response)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return responses, nil
}

func (s *Storage) GetResponses(ctx context.Context) ([]entity.Response, error) {
	const op = "storage.postgres.GetResponses"

	query := `SELECT poll_id, user_id, selected_option, voted_at FROM poll_responses ORDER BY voted_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var responses []entity.Response
	for rows.Next() {
		var response entity.Response
		if err := rows.Scan(&response.PollID, &response.UserID, &response.SelectedOption, &response.VotedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		responses = append(responses, response)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return responses, nil
}
