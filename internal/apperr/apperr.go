// Package apperr defines the error taxonomy shared by the engine and its
// callers. Every error carries a stable kind plus a human-readable message;
// the transport layer maps kinds to status codes without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation           Kind = "VALIDATION"
	KindNotFound             Kind = "NOT_FOUND"
	KindInsufficientBalance  Kind = "INSUFFICIENT_BALANCE"
	KindQuoteExpired         Kind = "QUOTE_EXPIRED"
	KindQuoteAlreadyExecuted Kind = "QUOTE_ALREADY_EXECUTED"
	KindDivisionByZero       Kind = "DIVISION_BY_ZERO"
	KindPriceUnavailable     Kind = "PRICE_UNAVAILABLE"
	KindInternal             Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is makes two apperr errors match on kind, so sentinel-style checks like
// errors.Is(err, apperr.New(apperr.KindNotFound, "...")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf returns the kind of err, or KindInternal for anything outside the
// taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Convenience sentinels for errors.Is checks.
var (
	ErrNotFound             = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInsufficientBalance  = &Error{Kind: KindInsufficientBalance, Message: "insufficient balance"}
	ErrQuoteExpired         = &Error{Kind: KindQuoteExpired, Message: "quote expired"}
	ErrQuoteAlreadyExecuted = &Error{Kind: KindQuoteAlreadyExecuted, Message: "quote already executed"}
)
