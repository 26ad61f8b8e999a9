package ann

import (
	"errors"
	"fmt"
)

// Kind classifies the errors a Space or index can return.
type Kind int

const (
	// InvalidParameter marks an unknown key, out-of-range value, or a
	// required build/query parameter that is missing.
	InvalidParameter Kind = iota
	// IoError marks a file open/read/write failure, a truncated stream,
	// or a magic/version mismatch.
	IoError
	// CorruptIndex marks a neighbor id out of range, a node claiming a
	// level above top_level, or a bidirectionality violation on load.
	CorruptIndex
	// NotInitialized marks a search or save attempted before any index
	// was built or loaded.
	NotInitialized
	// InvalidObject marks object bytes a Space could not parse.
	InvalidObject
)

func (k Kind) String() string {
	switch k {
	case InvalidParameter:
		return "invalid_parameter"
	case IoError:
		return "io_error"
	case CorruptIndex:
		return "corrupt_index"
	case NotInitialized:
		return "not_initialized"
	case InvalidObject:
		return "invalid_object"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with the operation that produced it and
// the Kind a caller should branch on.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("ann: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ann: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, &ann.Error{Kind: ann.NotInitialized}) matches any error of
// that Kind (KindOf below extracts the Kind directly); for any other target
// it compares against the wrapped error.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return errors.Is(e.Err, target)
}

// Wrap annotates err with op and kind. Returns nil if err is nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, if err (or something it wraps) is an
// *Error. The second return is false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
