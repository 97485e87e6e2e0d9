package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds used with errors.Is. Every typed error below unwraps to one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrIntegrity  = errors.New("integrity violation")
)

// ValidationError is a caller-correctable input problem. It is always detected before
// any state is changed.
type ValidationError struct {
	Reason string
}

func NewValidation(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError references an id that does not exist in the known set.
type NotFoundError struct {
	Entity string
	Id     int
}

func NewNotFound(entity string, id int) *NotFoundError {
	return &NotFoundError{Entity: entity, Id: id}
}

func (e *NotFoundError) Error() string {
	if e.Id == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.Id)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Is lets a package level sentinel such as NewNotFound("folder", 0) match any
// not-found error of the same entity.
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return t.Entity == e.Entity && (t.Id == 0 || t.Id == e.Id)
}

// IntegrityError signals that stored data is invalid, as opposed to the requested
// operation being invalid.
type IntegrityError struct {
	Detail string
}

func NewIntegrity(detail string) *IntegrityError {
	return &IntegrityError{Detail: detail}
}

func (e *IntegrityError) Error() string {
	return "integrity violation: " + e.Detail
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}

// HttpStatus maps an error to the status code handlers reply with.
func HttpStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIntegrity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteHttpError replies with the status matching err and its message as plain text.
func WriteHttpError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), HttpStatus(err))
}
