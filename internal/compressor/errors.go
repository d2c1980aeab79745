package compressor

import (
	"errors"
	"fmt"
)

var (
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")
	ErrIO     = errors.New("io error")

	// ErrUnsupportedColorMode is returned by an encoder that cannot store the
	// image's color mode. It is the only failure that triggers the truecolor retry.
	ErrUnsupportedColorMode = errors.New("unsupported color mode")
)

// Error carries the failure kind (ErrDecode, ErrEncode or ErrIO), the step
// that failed and the path involved.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func decodeError(op, path string, err error) error {
	return &Error{Kind: ErrDecode, Op: op, Path: path, Err: err}
}

func encodeError(op, path string, err error) error {
	return &Error{Kind: ErrEncode, Op: op, Path: path, Err: err}
}

func ioError(op, path string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}

// Kind returns a short name of the failure kind, or "unknown".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}
