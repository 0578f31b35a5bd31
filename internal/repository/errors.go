package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDefaultCategory is returned when deleting the default category.
	ErrDefaultCategory = errors.New("default category cannot be deleted")
)
