package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks a missing annotation, inspection, or sequence row.
	ErrNotFound = errors.New("not found")
	// ErrStaleVersion marks an edit or delete that lost a race against a
	// newer version of the same lineage.
	ErrStaleVersion = errors.New("stale version")
	// ErrLineageInactive marks an attempted mutation of a lineage that was
	// already rejected or deleted.
	ErrLineageInactive = errors.New("lineage inactive")
	// ErrSequenceUnavailable marks an unreadable or corrupt box counter.
	ErrSequenceUnavailable = errors.New("sequence unavailable")
	// ErrValidation marks malformed input (bad bbox, missing fields).
	ErrValidation = errors.New("validation failed")
	// ErrAuditWriteFailed is reported, never propagated: a history append
	// failing does not roll back the state change it describes.
	ErrAuditWriteFailed = errors.New("audit write failed")
	// ErrUnauthorized marks auth failures.
	ErrUnauthorized = errors.New("unauthorized")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// HTTPStatus maps the error taxonomy to a response status. StaleVersion maps
// to 409 so clients know to re-fetch the active row and retry.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStaleVersion):
		return http.StatusConflict
	case errors.Is(err, ErrLineageInactive):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrSequenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status != 0 {
			return apiErr.Status
		}
		return http.StatusInternalServerError
	}
}

// Code returns a stable machine-readable code for the error taxonomy.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStaleVersion):
		return "stale_version"
	case errors.Is(err, ErrLineageInactive):
		return "lineage_inactive"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrSequenceUnavailable):
		return "sequence_unavailable"
	default:
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Code != "" {
			return apiErr.Code
		}
		return "internal_error"
	}
}
