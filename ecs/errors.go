package ecs

import "errors"

// Sentinel errors. Every error returned by this package wraps one of these
// (or an error returned by a system) and can be matched with errors.Is.
var (
	// ErrNotFound is returned when an entity is unknown to its world, has no
	// owning world, or does not hold the requested component.
	ErrNotFound = errors.New("not found")

	// ErrContractViolation is returned when a caller hands the world a payload
	// or system state that does not satisfy its declared schema.
	ErrContractViolation = errors.New("contract violation")

	// ErrNoActiveContext is returned by CreateEntity when it is called outside
	// of a system's execute callback.
	ErrNoActiveContext = errors.New("no active world context")

	// ErrStopped is returned by a world after Stop has been called.
	ErrStopped = errors.New("world stopped")

	// ErrTickInProgress is returned by Execute when called from inside a
	// running tick.
	ErrTickInProgress = errors.New("tick already in progress")
)
