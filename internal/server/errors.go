// Package server provides the HTTP API for resolving degree requirements and
// serving prerequisite data.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrProgramNotFound indicates the named degree program is not in the catalog
type ErrProgramNotFound struct {
	Name string
}

func (e *ErrProgramNotFound) Error() string {
	return fmt.Sprintf("program not found: %s", e.Name)
}

// ErrSourceUnavailable indicates the prerequisite source could not be queried
type ErrSourceUnavailable struct {
	Course string
	Cause  error
}

func (e *ErrSourceUnavailable) Error() string {
	return fmt.Sprintf("prerequisite source unavailable for %s: %v", e.Course, e.Cause)
}

func (e *ErrSourceUnavailable) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		notFoundErr    *ErrProgramNotFound
		unavailableErr *ErrSourceUnavailable
		fieldErrs      validator.ValidationErrors
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &unavailableErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage turns a request validation failure into a user-facing
// message.
func validationMessage(err error) string {
	var validationErr *ErrValidation
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid value for %s (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	}
	return err.Error()
}
