package search

import "fmt"

// ValidationError indicates a malformed search request (empty query,
// bad page or page size, unknown entity type). Detected before any index
// work begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError indicates engine configuration the core cannot run
// with (non-positive n-gram size, out-of-range threshold).
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Setting, e.Reason)
}

// CollaboratorError wraps a failure from an external collaborator, such as
// the corpus provider. The core surfaces it unmodified and never retries.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
