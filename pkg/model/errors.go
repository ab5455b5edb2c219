package model

import "github.com/pkg/errors"

var (
	// ErrConfiguration is returned when a model part cannot be built from
	// the values it was given. It is fatal to graph construction.
	ErrConfiguration = errors.New("configuration error")

	// ErrDuplicatePart is returned when a name is registered twice in the
	// same graph.
	ErrDuplicatePart = errors.New("duplicate model part")
)
