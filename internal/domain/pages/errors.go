package pages

import "errors"

var (
	ErrNotFound         = errors.New("page not found")
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrCycleDetected    = errors.New("cycle detected")
	ErrOrphanedNode     = errors.New("orphaned node")
	ErrUnknownVariant   = errors.New("unknown variant type")
	ErrBusy             = errors.New("tree busy")
	ErrPermissionDenied = errors.New("permission denied")
	ErrLoginRequired    = errors.New("login required")
	ErrInvalidInput     = errors.New("invalid input")
	ErrProcessorFailed  = errors.New("page processor failed")
)
