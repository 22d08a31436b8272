package repository

import "errors"

var (
	// ErrDuplicateBinding is returned when a concurrent writer already holds the
	// (provider, external account) or (provider, user) slot.
	ErrDuplicateBinding = errors.New("binding already exists")

	// ErrDuplicateUser is returned when the user name is taken.
	ErrDuplicateUser = errors.New("user name already exists")
)
