package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/fund"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// badRequest marks an error caused by the request rather than the server.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto status codes. Internal errors never leak
// their message.
func writeError(w http.ResponseWriter, err error) {
	if isClientError(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", ErrorDescription: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
}

func isClientError(err error) bool {
	var br *badRequest
	return errors.Is(err, app.ErrValidation) || errors.Is(err, fund.ErrInvalidPeriod) || errors.As(err, &br)
}
