// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by the stores, the
// authorization policy, and the HTTP handlers. Handlers map these errors to
// status codes in exactly one place.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the requested resource id does not resolve.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthenticated means no valid actor is attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConflict means a uniqueness constraint was violated (duplicate email).
	ErrConflict = errors.New("conflict")
)

// ForbiddenError is returned when an authenticated actor is denied by the
// authorization policy. Reason is user-facing.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "unauthorized: " + e.Reason
}

// ValidationError collects field-level messages for malformed input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message against a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no field has a message.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e when it holds messages and a nil error otherwise, so
// callers can write `return v.OrNil()` without a typed-nil interface.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
