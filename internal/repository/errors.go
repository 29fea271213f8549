// Package repository provides data access layer implementations for the application.
package repository

import "errors"

// Sentinel errors returned by repositories for violated data invariants.
// Handlers map these onto the HTTP error taxonomy.
var (
	// ErrDuplicateKey indicates a unique index rejected a write
	// (e.g. a second account with the same email).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrAlreadyLiked indicates the (post, profile) pair already has a like.
	ErrAlreadyLiked = errors.New("post already liked")

	// ErrNotLiked indicates an unlike for a (post, profile) pair with no like.
	ErrNotLiked = errors.New("post not liked")
)
