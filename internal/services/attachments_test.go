package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/pollboard/pollboard/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header; enough for content sniffing.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 32)...)

func TestAttachFile_Image(t *testing.T) {
	board, store, files := newTestBoard(t)
	ctx := context.Background()
	pollID := createColorPoll(t, board)

	att, err := board.AttachFile(ctx, admin, pollID, "chart.png", pngBytes)
	require.NoError(t, err)

	assert.Equal(t, entity.AttachmentImage, att.Kind)
	assert.Equal(t, "image/png", att.ContentType)
	assert.Empty(t, att.ExtractedText)
	assert.NotEmpty(t, att.PublicURL)
	assert.Contains(t, files.uploads, att.ObjectPath)

	stored, err := store.GetAttachment(ctx, pollID)
	require.NoError(t, err)
	assert.Equal(t, att.ObjectPath, stored.ObjectPath)
}

func TestAttachFile_DocumentExtractsText(t *testing.T) {
	board, _, _ := newTestBoard(t)
	ctx := context.Background()
	pollID := createColorPoll(t, board)

	content := []byte("Which color should the new logo use?")
	att, err := board.AttachFile(ctx, admin, pollID, "notes.txt", content)
	require.NoError(t, err)

	assert.Equal(t, entity.AttachmentDocument, att.Kind)
	assert.Equal(t, string(content), att.ExtractedText)
}

func TestAttachFile_ReplacesPrevious(t *testing.T) {
	board, _, files := newTestBoard(t)
	ctx := context.Background()
	pollID := createColorPoll(t, board)

	first, err := board.AttachFile(ctx, admin, pollID, "old.png", pngBytes)
	require.NoError(t, err)

	second, err := board.AttachFile(ctx, admin, pollID, "new.txt", []byte("updated description"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ObjectPath, second.ObjectPath)
	assert.Contains(t, files.deleted, first.ObjectPath)
	assert.Contains(t, files.uploads, second.ObjectPath)
}

func TestAttachFile_Validation(t *testing.T) {
	board, _, _ := newTestBoard(t)
	ctx := context.Background()
	pollID := createColorPoll(t, board)

	_, err := board.AttachFile(ctx, admin, pollID, "empty.png", nil)
	assert.ErrorIs(t, err, ErrValidation)

	tooBig := bytes.Repeat([]byte{0xff}, 2048)
	_, err = board.AttachFile(ctx, admin, pollID, "big.bin", tooBig)
	assert.ErrorIs(t, err, ErrValidation)

	// An archive is neither an image nor a document.
	zipBytes := append([]byte{'P', 'K', 0x03, 0x04}, bytes.Repeat([]byte{0}, 32)...)
	_, err = board.AttachFile(ctx, admin, pollID, "data.zip", zipBytes)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAttachFile_NonAdmin(t *testing.T) {
	board, _, _ := newTestBoard(t)
	pollID := createColorPoll(t, board)

	_, err := board.AttachFile(context.Background(), voter, pollID, "chart.png", pngBytes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRemoveAttachment(t *testing.T) {
	board, store, files := newTestBoard(t)
	ctx := context.Background()
	pollID := createColorPoll(t, board)

	att, err := board.AttachFile(ctx, admin, pollID, "chart.png", pngBytes)
	require.NoError(t, err)

	require.NoError(t, board.RemoveAttachment(ctx, admin, pollID))

	_, err = store.GetAttachment(ctx, pollID)
	require.Error(t, err)
	assert.Contains(t, files.deleted, att.ObjectPath)
}
