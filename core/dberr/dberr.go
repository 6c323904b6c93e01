// Package dberr defines the error kinds raised by the schema, the loader,
// the query surface, the dumpers and the metadata export.
//
// Every error is an *Error carrying a Kind. Callers test the kind with
// errors.Is against the package sentinels:
//
//	if errors.Is(err, dberr.ErrFormat) { ... }
//
// or extract the details with errors.As.
package dberr

import (
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindSchema Kind = iota + 1
	KindFormat
	KindRequest
	KindNotFound
	KindDumper
	KindSchemaMetadata
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindFormat:
		return "format"
	case KindRequest:
		return "request"
	case KindNotFound:
		return "not found"
	case KindDumper:
		return "dumper"
	case KindSchemaMetadata:
		return "schema metadata"
	}
	return "unknown"
}

// Error is a classified error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error returns the message, followed by the wrapped cause if any.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrSchema         = &Error{Kind: KindSchema}
	ErrFormat         = &Error{Kind: KindFormat}
	ErrRequest        = &Error{Kind: KindRequest}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrDumper         = &Error{Kind: KindDumper}
	ErrSchemaMetadata = &Error{Kind: KindSchemaMetadata}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Schemaf returns a schema error.
func Schemaf(format string, args ...any) error { return newf(KindSchema, format, args...) }

// Formatf returns a format error.
func Formatf(format string, args ...any) error { return newf(KindFormat, format, args...) }

// Requestf returns a request error.
func Requestf(format string, args ...any) error { return newf(KindRequest, format, args...) }

// NotFoundf returns a not found error.
func NotFoundf(format string, args ...any) error { return newf(KindNotFound, format, args...) }

// Dumperf returns a dumper error.
func Dumperf(format string, args ...any) error { return newf(KindDumper, format, args...) }

// Metadataf returns a schema metadata error.
func Metadataf(format string, args ...any) error { return newf(KindSchemaMetadata, format, args...) }

// Wrap classifies err under kind. Errors that already carry a kind are
// returned unchanged so the innermost classification wins.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
