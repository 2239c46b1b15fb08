package sessiongate

import "errors"

var (
	// ErrBuilderUsed is returned when Build is called twice on the
	// same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrStorageRequired is returned when no storage backend was
	// configured and none could be constructed.
	ErrStorageRequired = errors.New("storage backend required")
	// ErrCartRequired is returned when the coordinator is built
	// without a cart collaborator.
	ErrCartRequired = errors.New("cart collaborator required")
	// ErrNavigatorRequired is returned when the coordinator is built
	// without a navigation collaborator.
	ErrNavigatorRequired = errors.New("navigation collaborator required")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)
