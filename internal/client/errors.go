package client

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/engine"
)

// Kind classifies a failed request by what the caller can do about it.
type Kind int

const (
	// KindNetwork means no response arrived. Retryable.
	KindNetwork Kind = iota

	// KindValidation means the request was rejected for its content; Fields
	// says which inputs were wrong.
	KindValidation

	// KindAuth means the session is not valid. The session has been torn
	// down and the operator must sign in again.
	KindAuth

	// KindRateLimited means the server asked the client to slow down.
	// Retryable after RetryAfter.
	KindRateLimited

	// KindServer is a 5xx response. Retryable.
	KindServer

	// KindRejected means the engine refused the operation in the current
	// match state (empty ledger, closed innings, missing roles, ...). The
	// operator fixes the state and tries again.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindRejected:
		return "rejected"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a failed API call.
//
// When the server reported a scoring error code, errors.Is and errors.As
// see the equivalent *engine.ScoringError, so callers can test
// errors.Is(err, engine.ErrEmptyLedger) on either side of the wire.
type Error struct {
	Kind       Kind
	Status     int
	Code       string
	Message    string
	Fields     map[string]string
	Details    map[string]string
	RetryAfter time.Duration
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Code != "" {
		b.WriteString(" ")
		b.WriteString(e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if keys := e.fieldNames(); len(keys) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(keys, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the transport cause or the scoring error.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if !isTransportCode(e.Code) && e.Code != "" {
		se := &engine.ScoringError{
			Code:    engine.ErrorCode(e.Code),
			Message: e.Message,
			Details: e.Details,
		}
		if keys := e.fieldNames(); len(keys) > 0 {
			se.Field = keys[0]
		}
		return se
	}
	return nil
}

// fieldNames returns the keys of Fields in sorted order.
func (e *Error) fieldNames() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Retryable reports whether repeating the same request may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRateLimited, KindServer:
		return true
	}
	return false
}

// Hint is a short operator-facing suggestion for the failure.
func (e *Error) Hint() string {
	switch e.Kind {
	case KindNetwork:
		return "cannot reach the server, check the connection and retry"
	case KindRateLimited:
		return "too many requests, retry shortly"
	case KindServer:
		return "the server failed, retry"
	case KindAuth:
		return "session expired, sign in again"
	case KindValidation:
		return "correct the highlighted fields"
	}
	return "fix the match state and try again"
}

func isTransportCode(code string) bool {
	switch code {
	case api.CodeBadRequest, api.CodeUnauthorized, api.CodeRateLimited, api.CodeInternal:
		return true
	}
	return false
}

// classify builds the Error for a non-2xx response.
func classify(status int, header http.Header, body api.ErrorBody) *Error {
	e := &Error{
		Status:  status,
		Code:    body.Code,
		Message: body.Message,
		Fields:  body.Fields,
		Details: body.Details,
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	case status == http.StatusNotFound || status == http.StatusConflict:
		e.Kind = KindRejected
	default:
		e.Kind = KindServer
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := time.ParseDuration(v + "s"); err == nil {
		return secs
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}
