package network

import "errors"

var (
	// ErrNotFound is returned when a segment or node id is not part of the network.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTopology is returned when a segment references a missing
	// node, ids collide, or the loop is too small to close.
	ErrInvalidTopology = errors.New("invalid topology")

	// ErrDegenerateGeometry is returned when a direction vector has zero length.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
