package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"agent-dispatch-service/internal/entity"
	"agent-dispatch-service/internal/service"
)

type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Message: msg})
}

// writeDomainErr maps domain sentinels onto HTTP codes so every handler
// answers consistently.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrNoDistribution):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrInvalidState), errors.Is(err, entity.ErrNoCompletedOutcome):
		writeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrNoEligibleAgents):
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
	case service.IsValidationError(err):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
