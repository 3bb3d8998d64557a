package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusAndCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{nil, http.StatusOK, ""},
		{NotFound("annotation"), http.StatusNotFound, "not_found"},
		{fmt.Errorf("head moved: %w", ErrStaleVersion), http.StatusConflict, "stale_version"},
		{fmt.Errorf("lineage closed: %w", ErrLineageInactive), http.StatusConflict, "lineage_inactive"},
		{Validation("bbox x1 %d out of range", -1), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("bad credentials: %w", ErrUnauthorized), http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("counter: %w", ErrSequenceUnavailable), http.StatusServiceUnavailable, "sequence_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{New(http.StatusTeapot, "teapot", errors.New("short and stout")), http.StatusTeapot, "teapot"},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.status)
		}
		if got := Code(tc.err); got != tc.code {
			t.Errorf("Code(%v) = %q, want %q", tc.err, got, tc.code)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	wrapped := New(http.StatusBadGateway, "upstream", fmt.Errorf("detect: %w", ErrSequenceUnavailable))
	if !errors.Is(wrapped, ErrSequenceUnavailable) {
		t.Fatalf("expected wrapped sentinel to survive errors.Is")
	}
	if wrapped.Error() != "detect: sequence unavailable" {
		t.Fatalf("Error() = %q", wrapped.Error())
	}
}

func TestValidationMessage(t *testing.T) {
	err := Validation("box %d already terminal", 4)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation sentinel")
	}
	want := "box 4 already terminal: validation failed"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}
