package planner

import "errors"

// Planner errors
var (
	ErrInvalidConfig   = errors.New("invalid traversal configuration")
	ErrUnknownStrategy = errors.New("unknown traversal strategy")
)
