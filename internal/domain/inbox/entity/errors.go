package entity

import "errors"

// Domain errors for the inbox viewer
var (
	ErrViewerNotFound      = errors.New("viewer session not found")
	ErrViewerClosed        = errors.New("viewer session is closed")
	ErrNoSelection         = errors.New("no conversation selected")
	ErrCounterpartNotFound = errors.New("counterpart not found")
	ErrSubjectRequired     = errors.New("subject id is required")
	ErrArchiveDisabled     = errors.New("event archive is not configured")
)
