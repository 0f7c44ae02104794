package curve

import "errors"

var (
	// ErrDuplicateKey indicates a keyframe already exists at the requested time.
	ErrDuplicateKey = errors.New("duplicate keyframe time")

	// ErrIndexOutOfRange indicates a keyframe index outside the curve.
	ErrIndexOutOfRange = errors.New("keyframe index out of range")

	// ErrInvalidTime indicates a negative or non-finite keyframe time.
	ErrInvalidTime = errors.New("invalid keyframe time")

	// ErrUnknownType indicates an unrecognised curve type name.
	ErrUnknownType = errors.New("unknown curve type")
)
