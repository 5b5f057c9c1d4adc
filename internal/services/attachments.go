package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pollboard/pollboard/internal/entity"
	"github.com/pollboard/pollboard/internal/extract"
	"github.com/pollboard/pollboard/internal/lib/sl"
	"github.com/pollboard/pollboard/internal/repo"
)

// kindByMIME maps the sniffed content type to an attachment kind. Anything
// not listed is rejected.
var kindByMIME = map[string]entity.AttachmentKind{
	"image/png":       entity.AttachmentImage,
	"image/jpeg":      entity.AttachmentImage,
	"image/webp":      entity.AttachmentImage,
	"application/pdf": entity.AttachmentDocument,
	"text/plain":      entity.AttachmentDocument,
}

// AttachFile validates and uploads a descriptive file for a poll, replacing
// any previous attachment. Document text is extracted and stored alongside
// the reference so readers never have to download the file.
func (p *PollBoard) AttachFile(ctx context.Context, user entity.User, pollID uuid.UUID, filename string, data []byte) (entity.Attachment, error) {
	const op = "PollBoard.AttachFile"

	if !user.IsAdmin() {
		return entity.Attachment{}, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if len(data) == 0 {
		return entity.Attachment{}, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if int64(len(data)) > p.maxUploadBytes {
		return entity.Attachment{}, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, p.maxUploadBytes)
	}

	// Sniff the real content type instead of trusting the filename.
	detected := mimetype.Detect(data)
	contentType := detected.String()

	kind, ok := kindByMIME[baseMIME(contentType)]
	if !ok {
		return entity.Attachment{}, fmt.Errorf("%w: unsupported file type %q", ErrValidation, contentType)
	}

	if _, err := p.pollStorage.GetPollByID(ctx, pollID); err != nil {
		return entity.Attachment{}, fmt.Errorf("%s: %w", op, err)
	}

	var extractedText string
	if kind == entity.AttachmentDocument {
		text, err := extract.Text(baseMIME(contentType), data)
		if err != nil {
			return entity.Attachment{}, fmt.Errorf("%s: %w", op, err)
		}
		extractedText = text
	}

	var oldObjectPath string
	if old, err := p.attachmentStorage.GetAttachment(ctx, pollID); err == nil {
		oldObjectPath = old.ObjectPath
	} else if !errors.Is(err, repo.ErrAttachmentNotFound) {
		return entity.Attachment{}, fmt.Errorf("%s: %w", op, err)
	}

	objectPath := path.Join("polls", pollID.String(), uuid.NewString()+path.Ext(filename))

	publicURL, err := p.files.Upload(ctx, objectPath, contentType, data)
	if err != nil {
		return entity.Attachment{}, fmt.Errorf("%s: %w", op, err)
	}

	att := entity.Attachment{
		PollID:        pollID,
		Kind:          kind,
		ObjectPath:    objectPath,
		PublicURL:     publicURL,
		ContentType:   contentType,
		SizeBytes:     int64(len(data)),
		ExtractedText: extractedText,
	}

	if err := p.attachmentStorage.SaveAttachment(ctx, att); err != nil {
		// The record is authoritative: undo the orphaned upload, best effort.
		if delErr := p.files.Delete(ctx, objectPath); delErr != nil {
			p.log.Warn("failed to clean up orphaned upload", slog.String("op", op), sl.Err(delErr))
		}
		return entity.Attachment{}, fmt.Errorf("%s: %w", op, err)
	}

	if oldObjectPath != "" && oldObjectPath != objectPath {
		if err := p.files.Delete(ctx, oldObjectPath); err != nil {
			p.log.Warn("failed to delete replaced attachment object",
				slog.String("op", op), slog.String("path", oldObjectPath), sl.Err(err))
		}
	}

	if _, err := p.logStorage.SaveLog(ctx, &entity.Log{UserID: user.ID, Action: op, PollID: pollID}); err != nil {
		return entity.Attachment{}, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("attachment stored",
		slog.String("op", op), slog.String("pollID", pollID.String()), slog.String("kind", string(kind)))

	return att, nil
}

// RemoveAttachment deletes the attachment record; object cleanup is best
// effort like in DeletePoll.
func (p *PollBoard) RemoveAttachment(ctx context.Context, user entity.User, pollID uuid.UUID) error {
	const op = "PollBoard.RemoveAttachment"

	if !user.IsAdmin() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	att, err := p.attachmentStorage.GetAttachment(ctx, pollID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.attachmentStorage.DeleteAttachment(ctx, pollID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.files.Delete(ctx, att.ObjectPath); err != nil {
		p.log.Warn("failed to delete attachment object",
			slog.String("op", op), slog.String("pollID", pollID.String()), sl.Err(err))
	}

	if _, err := p.logStorage.SaveLog(ctx, &entity.Log{UserID: user.ID, Action: op, PollID: pollID}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// baseMIME strips parameters such as "; charset=utf-8".
func baseMIME(contentType string) string {
	for i := 0; i < len(contentType); i++ {
		if contentType[i] == ';' {
			return contentType[:i]
		}
	}
	return contentType
}
