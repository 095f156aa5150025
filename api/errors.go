package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/generic"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string       `json:"error"`
	Kind  generic.Kind `json:"kind"`
	Field string       `json:"field,omitempty"`
}

// statusFor maps error kinds onto HTTP status codes.
func statusFor(kind generic.Kind) int {
	switch kind {
	case generic.KindNotFound:
		return http.StatusNotFound
	case generic.KindConflict:
		return http.StatusConflict
	case generic.KindValidation:
		return http.StatusBadRequest
	case generic.KindAuthorization:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError classifies err and writes it. Internal errors are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, statusFor(generic.KindOf(err)), err)
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	kind := generic.KindOf(err)
	resp := ErrorResponse{Error: err.Error(), Kind: kind}

	var e *generic.Error
	if errors.As(err, &e) {
		resp.Field = e.Field
	}
	if !generic.IsClientError(err) {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

// unauthorized answers 401 for missing or unusable credentials.
func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorStatus(w, r, http.StatusUnauthorized, generic.Forbidden("%s", message))
}
