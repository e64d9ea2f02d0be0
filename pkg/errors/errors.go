// Package errors provides structured error handling for icon resolution.
//
// Every failure surfaced by the resolver carries an ErrorKind. Callers test for
// a kind with the standard library:
//
//	if errors.Is(err, iconerrors.ErrIconNotFound) { ... }
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidName indicates a malformed or prefix-less icon identifier.
	KindInvalidName
	// KindProviderNotFound indicates no provider is registered for a prefix.
	KindProviderNotFound
	// KindIconNotFound indicates a provider does not have the requested icon.
	KindIconNotFound
	// KindInvalidSourceData indicates a source record lacks required fields.
	KindInvalidSourceData
	// KindInvalidSvg indicates the SVG parser could not find a root <svg> element.
	KindInvalidSvg
	// KindInvalidKey indicates a cache key uses reserved characters.
	KindInvalidKey
	// KindStorage indicates the durable cache could not persist or prepare storage.
	KindStorage
	// KindTransport indicates a remote host failed. It is recovered locally.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidName:
		return "invalid name"
	case KindProviderNotFound:
		return "provider not found"
	case KindIconNotFound:
		return "icon not found"
	case KindInvalidSourceData:
		return "invalid source data"
	case KindInvalidSvg:
		return "invalid svg"
	case KindInvalidKey:
		return "invalid key"
	case KindStorage:
		return "storage"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Kind sentinels for use with errors.Is.
var (
	ErrInvalidName       = &IconError{Kind: KindInvalidName}
	ErrProviderNotFound  = &IconError{Kind: KindProviderNotFound}
	ErrIconNotFound      = &IconError{Kind: KindIconNotFound}
	ErrInvalidSourceData = &IconError{Kind: KindInvalidSourceData}
	ErrInvalidSvg        = &IconError{Kind: KindInvalidSvg}
	ErrInvalidKey        = &IconError{Kind: KindInvalidKey}
	ErrStorage           = &IconError{Kind: KindStorage}
	ErrTransport         = &IconError{Kind: KindTransport}
)

// IconError represents a structured error raised while resolving an icon.
type IconError struct {
	// Op is the operation that failed (e.g., "manager.Get").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Name is the icon name, cache key or path involved, if any.
	Name string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack, populated only for reported errors.
	StackTrace string
	// Timestamp is when the error was reported.
	Timestamp time.Time
}

// New returns an IconError for op and kind.
func New(op string, kind ErrorKind, name string, err error) *IconError {
	return &IconError{Op: op, Kind: kind, Name: name, Err: err}
}

// Newf is like New but formats the underlying error message.
func Newf(op string, kind ErrorKind, name string, format string, args ...any) *IconError {
	return &IconError{Op: op, Kind: kind, Name: name, Err: fmt.Errorf(format, args...)}
}

func (e *IconError) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = fmt.Sprintf("%s [%s]", e.Op, e.Kind)
	}
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IconError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind sentinel matching e's kind.
func (e *IconError) Is(target error) bool {
	t, ok := target.(*IconError)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return t.Op == "" && t.Name == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first IconError in err's chain.
func KindOf(err error) ErrorKind {
	var ie *IconError
	if stderrors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err means the icon could not be resolved.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrIconNotFound)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "serve.icon").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives conditions that were recovered rather than returned.
type ErrorHandler interface {
	// HandleError is called when a recovered error is reported.
	HandleError(err *IconError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
