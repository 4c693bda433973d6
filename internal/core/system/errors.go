package system

import "errors"

var (
	ErrTickLimit   = errors.New("tick limit reached before completion")
	ErrInvalidTick = errors.New("tick duration must be positive")
)
