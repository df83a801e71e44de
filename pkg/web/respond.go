package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/expander"
	"github.com/ritzau/blueprint/pkg/generate"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/store"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("failed to encode response", "error", err)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		verr validator.ValidationErrors
		bad  *badRequest
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNodeNotFound),
		errors.Is(err, store.ErrEdgeNotFound),
		errors.Is(err, expander.ErrSuggestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, expander.ErrSuggestionResolved):
		return http.StatusConflict
	case errors.Is(err, store.ErrDanglingEdge),
		errors.Is(err, store.ErrImmutableField),
		errors.Is(err, store.ErrInvalidParent),
		errors.Is(err, model.ErrUnknownCategory),
		errors.Is(err, diagram.ErrInvalidDiagram),
		errors.Is(err, expander.ErrMaxDepth),
		errors.Is(err, expander.ErrNotMindMap),
		errors.Is(err, generate.ErrNotDocumented),
		errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, expander.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request error", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		RequestID: logging.GetRequestID(r.Context()),
	})
}

// decode reads a JSON body into v and validates its struct tags.
func (s *Server) decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &badRequest{err: err}
	}
	return s.validate.Struct(v)
}

type badRequest struct{ err error }

func (b *badRequest) Error() string { return "invalid request body: " + b.err.Error() }
func (b *badRequest) Unwrap() error { return b.err }
