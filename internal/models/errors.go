package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation.
var (
	ErrMissingKind  = errors.New("kind is required")
	ErrMissingLabel = errors.New("label is required")
)

// Sentinel errors for entity lookups.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateKey indicates a unique constraint violation (maps to HTTP 409 Conflict).
var ErrDuplicateKey = errors.New("duplicate key")

// ErrCycle indicates a rejected parent assignment: the candidate parent is
// the node itself or one of its descendants, so committing the link would
// close a cycle.
var ErrCycle = errors.New("parent assignment would create a cycle")

// ErrCycleDetected indicates invariant corruption in the stored parent
// relation: an ancestor walk exceeded the depth bound without reaching a
// root. It should never occur when all writes pass validation.
var ErrCycleDetected = errors.New("cycle detected in stored parent relation")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}
