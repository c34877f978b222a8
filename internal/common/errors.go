// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Request validation errors.
	ErrInvalidAmount = errors.New("amount must be a positive decimal")
	ErrInvalidInput  = errors.New("invalid input")

	// Classification errors. These never escape the classifier; they exist
	// so logs can distinguish why a fallback was applied.
	ErrClassificationFailed = errors.New("classification failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
