package clip

import "errors"

var (
	// ErrTargetExists indicates a target with the same kind and name is already in the clip.
	ErrTargetExists = errors.New("target already exists")

	// ErrTargetNotFound indicates the clip has no target with the requested reference.
	ErrTargetNotFound = errors.New("target not found")

	// ErrChannelCount indicates a value list that does not match the target's curves.
	ErrChannelCount = errors.New("channel count mismatch")

	// ErrKindMismatch indicates an operation that does not apply to the target's kind.
	ErrKindMismatch = errors.New("target kind mismatch")

	// ErrDisposed indicates an edit on a clip that was removed from its engine.
	ErrDisposed = errors.New("clip disposed")
)
