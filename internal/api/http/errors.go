package http

import (
	"encoding/json"
	"errors"
	"net/http"

	gs "github.com/mind-engage/mindengage-gradescale/internal/gradescale"
)

// statusFor maps domain errors to response codes.
func statusFor(err error) int {
	var errs gs.ErrorSet
	switch {
	case errors.As(err, &errs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gs.ErrCourseScaleReadOnly):
		return http.StatusForbidden
	case errors.Is(err, gs.ErrSaveInFlight), errors.Is(err, gs.ErrRowLocked), errors.Is(err, gs.ErrNotOpen):
		return http.StatusConflict
	case errors.Is(err, gs.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, gs.ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError sends err as plain text, or as a JSON error set for validation
// failures.
func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	var errs gs.ErrorSet
	if errors.As(err, &errs) {
		writeJSON(w, code, map[string]any{"errors": errs})
		return
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	http.Error(w, msg, code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
