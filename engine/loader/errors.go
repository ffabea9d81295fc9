package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks a malformed or truncated asset: a short read, an unexpected token,
	// an unknown enum value or a missing required field.
	ErrFormat = errors.New("invalid skeleton format")
	// ErrReference marks a name or index that does not resolve: a parent bone, slot bone,
	// skin, event or FFD target attachment.
	ErrReference = errors.New("unresolved skeleton reference")
	// ErrArgument marks an invalid call argument, rejected before any decoding.
	ErrArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat is returned for a Format value with no backend.
	ErrUnsupportedFormat = errors.New("unsupported skeleton format")
	// ErrClosed is returned by LoadAll once the Loader has been closed.
	ErrClosed = errors.New("loader closed")
)

// Load stages reported in LoadError.Stage.
const (
	StageHeader     = "header"
	StageBones      = "bones"
	StageSlots      = "slots"
	StageSkins      = "skins"
	StageEvents     = "events"
	StageAnimations = "animations"
)

// LoadError reports which asset and which stage of assembly failed.
type LoadError struct {
	// Name is the skeleton name passed to the load call.
	Name string
	// Stage is one of the Stage constants, or `animation "<name>" <timeline kind>`.
	Stage string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load skeleton %q: %s: %v", e.Name, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func formatErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func referenceErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReference, fmt.Sprintf(format, args...))
}

func argumentErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, args...))
}

func animationStage(name string, kind fmt.Stringer) string {
	if kind == nil {
		return fmt.Sprintf("animation %q", name)
	}
	return fmt.Sprintf("animation %q %s", name, kind)
}
