// Package apperr defines the error kinds returned by the content store.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrNameConflict     = errors.New("name conflict")
	ErrReadFailed       = errors.New("read failed")
	ErrCreateFailed     = errors.New("create failed")
	ErrWriteFailed      = errors.New("write failed")
	ErrRenameFailed     = errors.New("rename failed")
	ErrDeleteFailed     = errors.New("delete failed")
	ErrMalformedContent = errors.New("malformed content")
	ErrConflict         = errors.New("conflict")
	ErrInvalidArgument  = errors.New("invalid argument")
)

var codes = []struct {
	kind error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrNameConflict, "name_conflict"},
	{ErrReadFailed, "read_failed"},
	{ErrCreateFailed, "create_failed"},
	{ErrWriteFailed, "write_failed"},
	{ErrRenameFailed, "rename_failed"},
	{ErrDeleteFailed, "delete_failed"},
	{ErrMalformedContent, "malformed_content"},
	{ErrConflict, "conflict"},
	{ErrInvalidArgument, "invalid_argument"},
}

// Error carries a kind, the failing operation, the identifier it acted on and
// the underlying cause.
type Error struct {
	Kind    error
	Op      string
	Subject string
	Err     error
}

// E builds an *Error. cause may be nil.
func E(kind error, op, subject string, cause error) error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Subject != "" {
		msg += " " + e.Subject
	}
	msg = fmt.Sprintf("%s: %v", msg, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code returns the wire name of err's kind, or "internal" when err carries
// no known kind.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return "internal"
}
