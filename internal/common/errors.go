// Package common defines sentinel errors shared by the repositories, the
// services built on top of them and the executables. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrorNotFound is returned by the service layer when a required record is
	// missing. Repositories report missing rows as empty results instead.
	ErrorNotFound = errors.New("not found")

	// ErrConstraint reports a referential or uniqueness violation.
	ErrConstraint = errors.New("constraint violation")

	// ErrDuplicatedItem reports a name collision detected before a write.
	// It wraps ErrConstraint.
	ErrDuplicatedItem = fmt.Errorf("duplicated item: %w", ErrConstraint)

	// ErrQuery reports a store failure unrelated to the data itself.
	ErrQuery = errors.New("query error")

	// ErrInvalidCondition reports a filter condition that cannot be rendered
	// (unknown column, malformed predicate).
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrCrypto reports an encryption or decryption failure, including a key
	// that does not match the ciphertext.
	ErrCrypto = errors.New("crypto error")

	// ErrorUnauthorized is returned when a caller may not perform an operation.
	ErrorUnauthorized = errors.New("unauthorized")
)
