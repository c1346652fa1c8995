package assistant

import "errors"

var (
	// ErrGeneratorRequired is returned when no generator is provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrValidatorRequired is returned when no validator is provided.
	ErrValidatorRequired = errors.New("validator required")

	// ErrSanitizerRequired is returned when no sanitizer is provided.
	ErrSanitizerRequired = errors.New("sanitizer required")

	// ErrTurnRepositoryRequired is returned when no turn repository is provided.
	ErrTurnRepositoryRequired = errors.New("turn repository required")

	// ErrSessionRequired is returned for an empty session key.
	ErrSessionRequired = errors.New("session required")

	// ErrPromptRejected is returned when a prompt fails the validator pre-check.
	ErrPromptRejected = errors.New("prompt failed guardrails pre-check")

	// ErrGenerationFailed is returned when the model call fails.
	ErrGenerationFailed = errors.New("generation failed")
)
