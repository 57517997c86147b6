package agent

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrAgentExists    = errors.New("agent_exists")
	ErrAgentNotFound  = errors.New("agent_not_found")
)
