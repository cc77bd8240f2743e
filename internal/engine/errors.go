package engine

import (
	"errors"
	"fmt"
)

// ScoringError represents a rejected scoring operation.
//
// Scoring errors are locally recoverable: the stored state is unchanged and
// the operator can correct the input or perform the missing step first.
// ScoringError includes structured fields for diagnostics and for mapping to
// transport status codes.
type ScoringError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// MatchID identifies the affected match, when known.
	MatchID string

	// InningsID identifies the affected innings, when known.
	InningsID string

	// Field names the offending input for validation errors.
	Field string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes scoring errors.
type ErrorCode string

const (
	// CodeEmptyLedger indicates there is no delivery to undo.
	CodeEmptyLedger ErrorCode = "EMPTY_LEDGER"

	// CodeInvalidTransition indicates the match or innings cannot move to the
	// requested state.
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// CodeIncompleteRoleAssignment indicates a delivery was attempted while a
	// role was unfilled.
	CodeIncompleteRoleAssignment ErrorCode = "INCOMPLETE_ROLE_ASSIGNMENT"

	// CodeConsecutiveOverViolation indicates the bowler bowled the previous
	// over.
	CodeConsecutiveOverViolation ErrorCode = "CONSECUTIVE_OVER_VIOLATION"

	// CodeInningsNotActive indicates the innings no longer accepts deliveries.
	CodeInningsNotActive ErrorCode = "INNINGS_NOT_ACTIVE"

	// CodeValidationFailed indicates malformed operation input.
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// CodeOutOfSequence indicates an over/ball position other than the next
	// expected one.
	CodeOutOfSequence ErrorCode = "OUT_OF_SEQUENCE"

	// CodeRosterMismatch indicates a player outside the required team.
	CodeRosterMismatch ErrorCode = "ROSTER_MISMATCH"

	// CodeDuplicateBatter indicates one player in both batting roles.
	CodeDuplicateBatter ErrorCode = "DUPLICATE_BATTER"

	// CodeBatterDismissed indicates a dismissed batter was sent back in.
	CodeBatterDismissed ErrorCode = "BATTER_DISMISSED"

	// CodeBowlerQuotaExceeded indicates the bowler has used their overs.
	CodeBowlerQuotaExceeded ErrorCode = "BOWLER_QUOTA_EXCEEDED"

	// CodeNotFound indicates a referenced match, innings, team or player does
	// not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeResourceInUse indicates a delete blocked by dependent records.
	CodeResourceInUse ErrorCode = "RESOURCE_IN_USE"
)

// Sentinels for errors.Is. They match any ScoringError with the same code.
var (
	ErrEmptyLedger              = &ScoringError{Code: CodeEmptyLedger}
	ErrInvalidTransition        = &ScoringError{Code: CodeInvalidTransition}
	ErrIncompleteRoleAssignment = &ScoringError{Code: CodeIncompleteRoleAssignment}
	ErrConsecutiveOverViolation = &ScoringError{Code: CodeConsecutiveOverViolation}
	ErrInningsNotActive         = &ScoringError{Code: CodeInningsNotActive}
	ErrValidation               = &ScoringError{Code: CodeValidationFailed}
	ErrOutOfSequence            = &ScoringError{Code: CodeOutOfSequence}
	ErrRosterMismatch           = &ScoringError{Code: CodeRosterMismatch}
	ErrDuplicateBatter          = &ScoringError{Code: CodeDuplicateBatter}
	ErrBatterDismissed          = &ScoringError{Code: CodeBatterDismissed}
	ErrBowlerQuotaExceeded      = &ScoringError{Code: CodeBowlerQuotaExceeded}
	ErrNotFound                 = &ScoringError{Code: CodeNotFound}
	ErrResourceInUse            = &ScoringError{Code: CodeResourceInUse}
)

// Error implements the error interface.
func (e *ScoringError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "scoring operation rejected"
	}
	switch {
	case e.InningsID != "":
		return fmt.Sprintf("%s: %s (innings=%s)", e.Code, msg, e.InningsID)
	case e.MatchID != "":
		return fmt.Sprintf("%s: %s (match=%s)", e.Code, msg, e.MatchID)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Is reports whether target is a ScoringError with the same code.
func (e *ScoringError) Is(target error) bool {
	t, ok := target.(*ScoringError)
	return ok && t.Code == e.Code
}

// CodeOf returns the scoring code carried by err, or "" if err is not a
// ScoringError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var se *ScoringError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsValidationError reports whether err was caused by bad operation input
// rather than by the current match state.
func IsValidationError(err error) bool {
	switch CodeOf(err) {
	case CodeValidationFailed, CodeOutOfSequence, CodeRosterMismatch,
		CodeDuplicateBatter, CodeBatterDismissed, CodeBowlerQuotaExceeded:
		return true
	}
	return false
}

func newError(code ErrorCode, format string, args ...any) *ScoringError {
	return &ScoringError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func validationError(field, format string, args ...any) *ScoringError {
	return &ScoringError{
		Code:    CodeValidationFailed,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

func (e *ScoringError) forInnings(matchID, inningsID string) *ScoringError {
	e.MatchID = matchID
	e.InningsID = inningsID
	return e
}
