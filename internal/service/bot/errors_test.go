package bot

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{400, ErrBadRequest},
		{401, ErrUnauthorized},
		{403, ErrForbidden},
		{404, ErrNotFound},
		{422, ErrBadRequest},
		{429, ErrRateLimited},
		{500, ErrServerError},
		{503, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &APIError{Provider: "recall", Operation: "get_bot", StatusCode: tt.status})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v for status %d", tt.want, tt.status)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"401", &APIError{StatusCode: 401}, true},
		{"403", &APIError{StatusCode: 403}, true},
		{"400", &APIError{StatusCode: 400}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSchemaRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"400", &APIError{StatusCode: 400}, true},
		{"422 wrapped", fmt.Errorf("ctx: %w", &APIError{StatusCode: 422}), true},
		{"401", &APIError{StatusCode: 401}, false},
		{"404", &APIError{StatusCode: 404}, false},
		{"429", &APIError{StatusCode: 429}, false},
		{"500", &APIError{StatusCode: 500}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSchemaRejection(tt.err); got != tt.want {
				t.Errorf("IsSchemaRejection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"400", &APIError{StatusCode: 400}, true},
		{"404 wrapped", fmt.Errorf("ctx: %w", &APIError{StatusCode: 404}), true},
		{"500", &APIError{StatusCode: 500}, false},
		{"not configured", ErrNotConfigured, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClientError(tt.err); got != tt.want {
				t.Errorf("IsClientError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Provider: "recall", Operation: "create_bot", StatusCode: 400, Body: `{"detail":"bad"}`}
	want := `recall create_bot failed (400): {"detail":"bad"}`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
