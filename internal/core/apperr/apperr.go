// Package apperr holds the error taxonomy shared by actions and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindNotFound
)

const (
	MsgInvalid         = "The given data was invalid."
	MsgUnauthenticated = "Unauthenticated."
	MsgServerError     = "Server Error"
)

// Fields 字段级错误：field -> messages
type Fields map[string][]string

// Add appends msg to field.
func (f Fields) Add(field, msg string) { f[field] = append(f[field], msg) }

type Error struct {
	Kind    Kind
	Message string
	Fields  Fields
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s %v", e.Message, map[string][]string(e.Fields))
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns nil when fields is empty so callers can `return apperr.Validation(f)`
// only after checking, or use it directly as a guard.
func Validation(fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: MsgInvalid, Fields: fields}
}

// Invalid is a single-field validation error.
func Invalid(field, msg string) error {
	return &Error{Kind: KindValidation, Message: MsgInvalid, Fields: Fields{field: {msg}}}
}

func Unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Message: MsgUnauthenticated}
}

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf 非 *Error 一律视为 internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// StatusOf maps an error to its HTTP status code.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
