// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"blogapi/internal/apperr"
)

// maxBodyBytes caps request bodies; post content is the largest field.
const maxBodyBytes = 1 << 20

// errInvalidCredentials is returned by Login for an unknown email or a wrong
// password. The two cases are indistinguishable to the caller.
var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthenticated)

// badRequestError marks a body that is not valid JSON for the endpoint.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

// errorBody is the JSON error shape for every non-2xx response.
type errorBody struct {
	Error     string              `json:"error"`
	Message   string              `json:"message,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// messageBody is the shape of bare confirmations such as logout.
type messageBody struct {
	Message string `json:"message"`
}

// dataBody wraps a single resource.
type dataBody struct {
	Data any `json:"data"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeRawJSON sends an already-encoded JSON body.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError maps err onto the error taxonomy. This is the only place a
// handler error becomes a status code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		badReq    *badRequestError
		invalid   *apperr.ValidationError
		forbidden *apperr.ForbiddenError
	)

	switch {
	case errors.As(err, &badReq):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Bad Request", Message: badReq.msg})

	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Validation failed", Errors: invalid.Fields})

	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  "Validation failed",
			Errors: map[string][]string{"email": {msgEmailTaken}},
		})

	case errors.Is(err, errInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthenticated", Message: "Invalid credentials"})

	case errors.Is(err, apperr.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthenticated", Message: "A valid bearer token is required."})

	case errors.As(err, &forbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Unauthorized", Message: forbidden.Reason})

	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not Found", Message: "The requested resource was not found."})

	default:
		reqID := chimw.GetReqID(r.Context())
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqID,
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:     "Internal Server Error",
			Message:   "An unexpected error occurred.",
			RequestID: reqID,
		})
	}
}

// decodeJSON reads the request body into dst. An empty body decodes as an
// empty object so missing fields surface as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &badRequestError{msg: "Request body is too large."}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &badRequestError{msg: fmt.Sprintf("The %s field has the wrong type.", typeErr.Field)}
		}
		return &badRequestError{msg: "Request body must be valid JSON."}
	}
	if dec.More() {
		return &badRequestError{msg: "Request body must contain a single JSON object."}
	}
	return nil
}
