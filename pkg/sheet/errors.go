package sheet

import (
	"errors"
	"fmt"
)

// Sentinel errors used to classify a LoadError with errors.Is.
var (
	ErrNotFound          = errors.New("sheet image not found")
	ErrUnreadable        = errors.New("sheet image unreadable")
	ErrUndecodable       = errors.New("sheet image undecodable")
	ErrDimensionMismatch = errors.New("sheet dimensions do not match grid")
	ErrInvalidGrid       = errors.New("invalid sheet grid")
)

// LoadErrorKind classifies why a sprite sheet could not be loaded.
type LoadErrorKind int

const (
	// NotFound means the image file does not exist.
	NotFound LoadErrorKind = iota
	// Unreadable means the file exists but could not be read.
	Unreadable
	// Undecodable means the bytes are not an image format we understand.
	Undecodable
	// DimensionMismatch means the pixel size is not evenly divisible by the grid.
	DimensionMismatch
	// InvalidGrid means the declared grid itself is unusable.
	InvalidGrid
)

// String returns a short name for the kind.
func (k LoadErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Unreadable:
		return "unreadable"
	case Undecodable:
		return "undecodable"
	case DimensionMismatch:
		return "dimension mismatch"
	case InvalidGrid:
		return "invalid grid"
	default:
		return fmt.Sprintf("LoadErrorKind(%d)", int(k))
	}
}

func (k LoadErrorKind) sentinel() error {
	switch k {
	case NotFound:
		return ErrNotFound
	case Unreadable:
		return ErrUnreadable
	case Undecodable:
		return ErrUndecodable
	case DimensionMismatch:
		return ErrDimensionMismatch
	default:
		return ErrInvalidGrid
	}
}

// LoadError is the single error type returned by Load and Inspect.
// Callers decide whether to abort the scene or skip the cutscene;
// nothing is retried.
type LoadError struct {
	Kind   LoadErrorKind
	Path   string
	Detail string
	Err    error // underlying cause, may be nil
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load sprite sheet %s: %s", e.Path, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func newLoadError(kind LoadErrorKind, path string, err error, format string, args ...any) *LoadError {
	return &LoadError{
		Kind:   kind,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}
