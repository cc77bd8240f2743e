package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/roach88/crease/internal/api"
)

// normalizeEnvelope turns any response body into the canonical envelope.
// It is the only place that looks at the raw shape of a response; callers
// only ever see api.Envelope.
//
// Accepted shapes:
//
//	{"data": X}                          canonical success
//	{"error": {"code": .., "message": ..}} canonical failure
//	{"error": "text"}                    failure from a proxy or older server
//	{"code": .., "message": ..}          bare failure object (error status only)
//	X                                    bare payload (success status only)
//	non-JSON text                        failure text (error status only)
func normalizeEnvelope(status int, body []byte) (api.Envelope, error) {
	body = bytes.TrimSpace(body)
	failed := status >= http.StatusBadRequest

	if len(body) == 0 {
		if failed {
			return api.Envelope{Error: &api.ErrorBody{Message: http.StatusText(status)}}, nil
		}
		return api.Envelope{}, nil
	}

	if !json.Valid(body) {
		if failed {
			return api.Envelope{Error: &api.ErrorBody{Message: firstLine(string(body))}}, nil
		}
		return api.Envelope{}, &Error{Kind: KindServer, Status: status, Message: "response is not JSON"}
	}

	var probe map[string]json.RawMessage
	if body[0] == '{' {
		if err := json.Unmarshal(body, &probe); err != nil {
			return api.Envelope{}, &Error{Kind: KindServer, Status: status, Message: "malformed response", Err: err}
		}
	}

	if raw, ok := probe["error"]; ok && !isNull(raw) {
		return api.Envelope{Error: decodeErrorBody(raw)}, nil
	}
	if raw, ok := probe["data"]; ok {
		return api.Envelope{Data: raw}, nil
	}
	if failed {
		var eb api.ErrorBody
		_ = json.Unmarshal(body, &eb)
		if eb.Message == "" {
			eb.Message = http.StatusText(status)
		}
		return api.Envelope{Error: &eb}, nil
	}
	return api.Envelope{Data: json.RawMessage(body)}, nil
}

func decodeErrorBody(raw json.RawMessage) *api.ErrorBody {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &api.ErrorBody{Message: text}
	}
	var eb api.ErrorBody
	_ = json.Unmarshal(raw, &eb)
	return &eb
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const limit = 200
	if len(s) > limit {
		s = s[:limit]
	}
	return strings.TrimSpace(s)
}
