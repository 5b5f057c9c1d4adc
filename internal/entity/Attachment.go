package entity

import (
	"time"

	"github.com/google/uuid"
)

type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is the optional descriptive file of a poll: at most one per poll,
// either an image or a document. ExtractedText is filled for documents only.
type Attachment struct {
	PollID        uuid.UUID      `json:"poll_id"`
	Kind          AttachmentKind `json:"kind"`
	ObjectPath    string         `json:"object_path"`
	PublicURL     string         `json:"public_url"`
	ContentType   string         `json:"content_type"`
	SizeBytes     int64          `json:"size_bytes"`
	ExtractedText string         `json:"extracted_text,omitempty"`
	UploadedAt    time.Time      `json:"uploaded_at"`
}
