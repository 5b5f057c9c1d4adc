package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/repo"
)

// SaveAttachment stores the poll's attachment, replacing any previous one.
func (s *Storage) SaveAttachment(ctx context.Context, att entity.Attachment) error {
	const op = "storage.postgres.SaveAttachment"

	query := `INSERT INTO poll_attachments (poll_id, kind, object_path, public_url, content_type, size_bytes, extracted_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (poll_id) DO UPDATE SET
			kind = EXCLUDED.kind,
			object_path = EXCLUDED.object_path,
			public_url = EXCLUDED.public_url,
			content_type = EXCLUDED.content_type,
			size_bytes = EXCLUDED.size_bytes,
			extracted_text = EXCLUDED.extracted_text,
			uploaded_at = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		att.PollID, att.Kind, att.ObjectPath, att.PublicURL, att.ContentType, att.SizeBytes, att.ExtractedText)
	if err != nil {
		if isPqError(err, pqForeignKeyViolation) {
			return fmt.Errorf("%s: %w", op, repo.ErrPollNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetAttachment(ctx context.Context, pollID uuid.UUID) (entity.Attachment, error) {
	const op = "storage.postgres.GetAttachment"

	query := `SELECT poll_id, kind, object_path, public_url, content_type, size_bytes, COALESCE(extracted_text, ''), uploaded_at
		FROM poll_attachments WHERE poll_id = $1`

	var att entity.Attachment
	err := s.db.QueryRowContext(ctx, query, pollID).Scan(
		&att.PollID, &att.Kind, &att.ObjectPath, &att.PublicURL, &att.ContentType, &att.SizeBytes, &att.ExtractedText, &att.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Attachment{}, fmt.Errorf("%s: %w", op, repo.ErrAttachmentNotFound)
		}
		return entity.Attachment{}, fmt.Errorf("%s: %w", op, err)
	}

	return att, nil
}

func (s *Storage) DeleteAttachment(ctx context.Context, pollID uuid.UUID) error {
	const op = "storage.postgres.DeleteAttachment"

	res, err := s.db.ExecContext(ctx, `DELETE FROM poll_attachments WHERE poll_id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrAttachmentNotFound
	}

	return nil
}
