package services

import "errors"

// Operation outcomes surfaced to the presentation layer. Each maps to a
// specific user-visible refusal; none leaves a partial mutation behind.
var (
	// ErrValidation: a required field was empty after trimming. No store
	// call is issued.
	ErrValidation = errors.New("required field is empty")

	// ErrNotAuthor: the caller's principal does not match the record's
	// stored author ("author only").
	ErrNotAuthor = errors.New("author only")

	// ErrHasComments: a post with existing comments cannot be deleted
	// ("has comments").
	ErrHasComments = errors.New("has comments")
)
