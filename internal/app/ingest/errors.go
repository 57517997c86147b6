package ingest

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrStore          = errors.New("store_error")
	ErrOrphanLog      = errors.New("activity log without agent id")
)
