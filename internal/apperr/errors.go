// Package apperr defines the error taxonomy shared by handlers and services and
// the JSON envelope every failure is rendered as.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies a failure and decides its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindUpstream
	KindRejected
	KindTooLarge
	KindRateLimited
)

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindRejected:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a client-facing message.
// Err is the underlying cause; Result carries a raw upstream payload.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Result  any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func TooLarge(msg string) *Error     { return &Error{Kind: KindTooLarge, Message: msg} }
func RateLimited(msg string) *Error  { return &Error{Kind: KindRateLimited, Message: msg} }

// Upstream wraps a failure of the object store, credential store or payment provider.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Rejected reports an upstream call that completed but did not succeed.
func Rejected(msg string, result any) *Error {
	return &Error{Kind: KindRejected, Message: msg, Result: result}
}

// KindOf returns the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Envelope is the JSON body of every error response.
type Envelope struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Write renders err as an Envelope with the mapped status.
func Write(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindInternal, Message: "Internal server error.", Err: err}
	}
	status := e.Kind.Status()
	env := Envelope{Message: e.Message, Result: e.Result}
	if e.Err != nil && status >= http.StatusInternalServerError {
		env.Error = e.Err.Error()
	}
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed", "status", status, "err", err)
		} else {
			logger.Debugw("request rejected", "status", status, "err", err)
		}
	}
	WriteJSON(w, status, env)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
