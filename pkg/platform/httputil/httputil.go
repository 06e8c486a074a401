package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	dErrors "agrocert/pkg/domain-errors"
)

// ErrorResponse is the uniform error envelope returned by every endpoint.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Reason    string   `json:"reason,omitempty"`
	Details   []string `json:"details,omitempty"`
}

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as the error envelope. Internal errors never leak
// their message to the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)

	resp := ErrorResponse{
		Error:     string(code),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if status == http.StatusInternalServerError {
		resp.Error = string(dErrors.CodeInternal)
		resp.Message = "internal server error"
	} else {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.Message = de.Message
			resp.Reason = de.Reason
			resp.Details = de.Details
		} else {
			resp.Message = err.Error()
		}
	}
	WriteJSON(w, status, resp)
}

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
