package repo

import "errors"

var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrOptionNotFound     = errors.New("option not found")
	ErrAlreadyVoted       = errors.New("vote already recorded")
	ErrAttachmentNotFound = errors.New("attachment not found")
)
