package health

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrAgentNotFound  = errors.New("agent_not_found")
)
