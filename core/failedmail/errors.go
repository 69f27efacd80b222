package failedmail

import "errors"

var (
	ErrRecordNotFound     = errors.New("failed email record not found")
	ErrDuplicateID        = errors.New("failed email record id already exists")
	ErrInvalidRecord      = errors.New("invalid failed email record")
	ErrCorruptDocument    = errors.New("failed email document is corrupt")
	ErrStoreWrite         = errors.New("failed to write failed email document")
	ErrAttachmentDir      = errors.New("failed to create attachment directory")
	ErrOutsideAttachments = errors.New("path is outside the attachment root")
)
