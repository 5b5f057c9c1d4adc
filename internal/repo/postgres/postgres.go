package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/repo"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type Storage struct {
	db *sql.DB
}

func New(postgresURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) SavePoll(ctx context.Context, title string, options []string, deadline *time.Time, createdBy string) (uuid.UUID, error) {
	const op = "storage.postgres.SavePoll"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	id := uuid.New()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO polls (id, title, deadline, created_by) VALUES ($1, $2, $3, $4)`,
		id, title, deadline, createdBy)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, text := range options {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO poll_options (poll_id, position, text, votes) VALUES ($1, $2, $3, 0)`,
			id, i, text)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetPollByID(ctx context.Context, id uuid.UUID) (entity.Poll, error) {
	const op = "storage.postgres.GetPollByID"

	query := `SELECT id, title, deadline, created_by, created_at, updated_at FROM polls WHERE id = $1`

	var poll entity.Poll
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&poll.ID, &poll.Title, &poll.Deadline, &poll.CreatedBy, &poll.CreatedAt, &poll.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Poll{}, fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
		}
		return entity.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	options, err := s.optionsByPollID(ctx, id)
	if err != nil {
		return entity.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	poll.Options = options

	return poll, nil
}

func (s *Storage) GetPolls(ctx context.Context) ([]entity.Poll, error) {
	const op = "storage.postgres.GetPolls"

	query := `SELECT id, title, deadline, created_by, created_at, updated_at FROM polls ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var polls []entity.Poll
	for rows.Next() {
		var poll entity.Poll
		if err := rows.Scan(&poll.ID, &poll.Title, &poll.Deadline, &poll.CreatedBy, &poll.CreatedAt, &poll.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		polls = append(polls, poll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	for i := range polls {
		options, err := s.optionsByPollID(ctx, polls[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		polls[i].Options = options
	}

	return polls, nil
}

// UpdatePoll rewrites the poll's title, deadline and option list. Vote counters
// of options whose text survives the edit are preserved.
func (s *Storage) UpdatePoll(ctx context.Context, id uuid.UUID, title string, options []string, deadline *time.Time) error {
	const op = "storage.postgres.UpdatePoll"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE polls SET title = $1, deadline = $2, updated_at = NOW() WHERE id = $3`,
		title, deadline, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
	}

	// Remember counters of the current options before replacing them.
	existing := make(map[string]int)
	rows, err := tx.QueryContext(ctx, `SELECT text, votes FROM poll_options WHERE poll_id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for rows.Next() {
		var text string
		var votes int
		if err := rows.Scan(&text, &votes); err != nil {
			rows.Close()
			return fmt.Errorf("%s: scan: %w", op, err)
		}
		existing[text] = votes
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("%s: rows error: %w", op, err)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_options WHERE poll_id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i, text := range options {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO poll_options (poll_id, position, text, votes) VALUES ($1, $2, $3, $4)`,
			id, i, text, existing[text])
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeletePoll(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeletePoll"

	query := `DELETE FROM polls WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrPollNotFound
	}

	return nil
}

func (s *Storage) optionsByPollID(ctx context.Context, pollID uuid.UUID) ([]entity.Option, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, votes FROM poll_options WHERE poll_id = $1 ORDER BY position`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []entity.Option
	for rows.Next() {
		var option entity.Option
		if err := rows.Scan(&option.Text, &option.Votes); err != nil {
			return nil, err
		}
		options = append(options, option)
	}

	return options, rows.Err()
}

func isPqError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
