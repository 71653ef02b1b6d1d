package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/markoai/marko-backend/errs"
)

func TestMapGeminiError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, http.StatusTooManyRequests},
		{"bad key", genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key."}, http.StatusBadGateway},
		{"permission", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, http.StatusBadGateway},
		{"safety", genai.APIError{Code: 400, Message: "blocked by safety settings"}, http.StatusBadRequest},
		{"overloaded", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, http.StatusServiceUnavailable},
		{"upstream deadline", genai.APIError{Code: 504, Status: "DEADLINE_EXCEEDED"}, http.StatusGatewayTimeout},
		{"wrapped", fmt.Errorf("send: %w", genai.APIError{Code: 429}), http.StatusTooManyRequests},
		{"context deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("connection reset"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapGeminiError(context.Background(), tt.err)
			assert.Equal(t, tt.status, errs.StatusOf(err))
		})
	}
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), GeminiConfig{})
	assert.True(t, errs.IsServiceNotConfiguredError(err))
}
