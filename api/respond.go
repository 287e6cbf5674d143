package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"stacktrack/service"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondJSON writes a JSON body with the given status
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response body")
	}
}

// respondUnauthorized is shared with the auth middleware
func respondUnauthorized(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnauthorized, errorResponse{Error: message})
}

// respondError maps the service error taxonomy onto status codes. Anything
// outside the taxonomy is a 500 with the detail kept out of the response.
func respondError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError
	var notFound *service.NotFoundError

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		respondUnauthorized(w, "unauthorized")
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: validation.Fields,
		})
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, errorResponse{Error: conflict.Message})
	case errors.As(err, &notFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Error()})
	default:
		log.WithError(err).Error("Request failed")
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeJSON parses the request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return service.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return nil
}
