package domain

import "errors"

var (
	// ErrInvalidValue indicates a weight that is not a finite number > 0.
	ErrInvalidValue = errors.New("invalid value")
	// ErrPersistence indicates the backing medium could not be written.
	ErrPersistence = errors.New("persistence error")
	// ErrCorruptData indicates the backing medium exists but cannot be read
	// back into weight entries.
	ErrCorruptData = errors.New("corrupt data")
)
