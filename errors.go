// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package lwe

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDecode                  = errors.New("invalid JSON")
	ErrInvalidSpec             = errors.New("invalid distribution spec")
	ErrUnsupportedDistribution = errors.New("unsupported distribution")
	ErrMissingField            = errors.New("missing field")
	ErrTypeMismatch            = errors.New("type mismatch")
	ErrInvalidParameters       = errors.New("invalid parameters")
	ErrEstimator               = errors.New("estimator failure")
)

// FieldError reports a problem with one field of a distribution spec.
// It matches ErrInvalidSpec and its Err (ErrMissingField, ErrTypeMismatch,
// or ErrInvalidSpec for out-of-range values) under errors.Is.
type FieldError struct {
	Dist     string
	Field    string
	Expected string
	Err      error
}

func (e *FieldError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMissingField):
		return fmt.Sprintf("%s: %s: requires %q", e.Dist, e.Err, e.Field)
	case errors.Is(e.Err, ErrTypeMismatch):
		return fmt.Sprintf("%s: %s: %q must be %s", e.Dist, e.Err, e.Field, e.Expected)
	default:
		return fmt.Sprintf("%s: %q must be %s", e.Dist, e.Field, e.Expected)
	}
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrInvalidSpec {
		return []error{ErrInvalidSpec}
	}
	return []error{e.Err, ErrInvalidSpec}
}

func missingField(dist, field string) error {
	return &FieldError{Dist: dist, Field: field, Err: ErrMissingField}
}

func typeMismatch(dist, field, expected string) error {
	return &FieldError{Dist: dist, Field: field, Expected: expected, Err: ErrTypeMismatch}
}

func outOfRange(dist, field, expected string) error {
	return &FieldError{Dist: dist, Field: field, Expected: expected, Err: ErrInvalidSpec}
}
