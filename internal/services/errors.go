package services

import "errors"

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrApplicationNotFound = errors.New("application not found")

	// ErrInvalidJob is a posting that passed binding but is blank after trimming.
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidBatch wraps every kanban batch validation failure.
	ErrInvalidBatch = errors.New("invalid kanban batch")

	// ErrLLMUnavailable is returned when no model is configured.
	ErrLLMUnavailable = errors.New("llm not configured")
)
