package repo

import "errors"

var (
	// ErrNotFound indicates the entity is not present in the local collection.
	// Callers must obtain ids from a prior listing.
	ErrNotFound = errors.New("entity not found locally")
	// ErrViewClosed indicates the comment view owning the repository has been
	// closed and its collection discarded.
	ErrViewClosed = errors.New("comment view closed")
)
