// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Ingestion errors.
	ErrSchemaInference = errors.New("schema inference failed")

	// Tagging errors.
	ErrValidation = errors.New("validation failed")
)
