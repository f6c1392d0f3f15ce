package usecase

import "errors"

var (
	// ErrMissingCreatedAt rejects a PR record without a creation
	// timestamp; every stage computation depends on it.
	ErrMissingCreatedAt = errors.New("pull request record has no created_at timestamp")

	ErrConstraintNotFound = errors.New("constraint not found")
	ErrNoContributors     = errors.New("contributor list is empty")
)
