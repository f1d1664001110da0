package graph

import "errors"

var (
	// ErrDuplicateNode indicates a node with the same ID already exists.
	ErrDuplicateNode = errors.New("node already exists")

	// ErrUnknownNode indicates a referenced node ID is not in the store.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidRange indicates a strength or confidence outside [0,1].
	ErrInvalidRange = errors.New("value outside [0,1]")

	// ErrInvalidMass indicates a non-positive importance at node creation.
	// Rejected here so the integrator can always assume mass > 0.
	ErrInvalidMass = errors.New("importance must be positive")

	// ErrConnectionNotFound indicates an update referenced a missing
	// connection.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrInvalidRelationType indicates an unrecognized relation type.
	ErrInvalidRelationType = errors.New("invalid relation type")
)
