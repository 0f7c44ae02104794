package playback

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a clip lookup miss. NotFoundError wraps it.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateClip indicates a clip with the same name already exists in the layer.
	ErrDuplicateClip = errors.New("duplicate clip")

	// ErrRebuildInProgress indicates a rebuild was requested, or clips were
	// edited, while a rebuild was running.
	ErrRebuildInProgress = errors.New("rebuild already in progress")

	// ErrNoCurrentClip indicates an operation on the current clip before one was selected.
	ErrNoCurrentClip = errors.New("no current clip")

	// ErrForeignClip indicates a clip that belongs to another engine.
	ErrForeignClip = errors.New("clip not owned by engine")
)

// NotFoundError reports a missing clip together with the names that exist.
type NotFoundError struct {
	Kind  string
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "playback: %s %q not found", e.Kind, e.Name)
	if len(e.Known) > 0 {
		fmt.Fprintf(&b, " (known: %s)", strings.Join(e.Known, ", "))
	}
	return b.String()
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
