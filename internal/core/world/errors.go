package world

import "errors"

var (
	ErrNilHost       = errors.New("world: nil host")
	ErrHostExists    = errors.New("world: host already exists")
	ErrHostNotFound  = errors.New("world: host not found")
	ErrHostPanicked  = errors.New("world: host panicked during frame")
	ErrHostDestroyed = errors.New("world: host is destroyed")
)
