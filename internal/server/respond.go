package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/engine"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func writeData(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, api.ErrorBody{Code: api.CodeInternal, Message: "encode response"})
		return
	}
	writeEnvelope(w, status, api.Envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, body api.ErrorBody) {
	writeEnvelope(w, status, api.Envelope{Error: &body})
}

func writeEnvelope(w http.ResponseWriter, status int, env api.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// statusFor maps an engine error code to an HTTP status.
func statusFor(code engine.ErrorCode) int {
	switch code {
	case engine.CodeValidationFailed, engine.CodeOutOfSequence, engine.CodeRosterMismatch,
		engine.CodeDuplicateBatter, engine.CodeBatterDismissed, engine.CodeBowlerQuotaExceeded:
		return http.StatusUnprocessableEntity
	case engine.CodeInvalidTransition, engine.CodeEmptyLedger, engine.CodeInningsNotActive,
		engine.CodeIncompleteRoleAssignment, engine.CodeConsecutiveOverViolation,
		engine.CodeResourceInUse:
		return http.StatusConflict
	case engine.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail writes err as an error envelope. Scoring errors keep their code and
// field; anything else is logged and reported as a bare internal error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var se *engine.ScoringError
	if !errors.As(err, &se) {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, api.ErrorBody{
			Code:    api.CodeInternal,
			Message: "internal error",
		})
		return
	}

	body := api.ErrorBody{
		Code:    string(se.Code),
		Message: se.Message,
		Details: se.Details,
	}
	if se.Field != "" {
		body.Fields = map[string]string{se.Field: se.Message}
	}
	s.logger.Debug("request rejected",
		"path", r.URL.Path,
		"code", se.Code,
		slog.String("message", se.Message))
	writeError(w, statusFor(se.Code), body)
}

// decode reads a JSON body strictly. Unknown fields are rejected so that a
// misspelt field is never silently dropped.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorBody{
			Code:    api.CodeBadRequest,
			Message: "malformed request body: " + err.Error(),
		})
		return false
	}
	return true
}
