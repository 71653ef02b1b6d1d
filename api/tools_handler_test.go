package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase64Tool(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   Base64Request
		output string
	}{
		{"encode", Base64Request{Mode: "encode", Input: "hello"}, "aGVsbG8="},
		{"encode url safe", Base64Request{Mode: "encode", Input: "??>", URLSafe: true}, "Pz8-"},
		{"decode padded", Base64Request{Mode: "decode", Input: "aGVsbG8="}, "hello"},
		{"decode unpadded", Base64Request{Mode: "DECODE", Input: "aGVsbG8"}, "hello"},
		{"decode wrapped", Base64Request{Mode: "decode", Input: "aGVs\nbG8="}, "hello"},
		{"encode empty", Base64Request{Mode: "encode"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/tools/base64", tt.body, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.output, decode[Base64Response](t, rec).Output)
		})
	}
}

func TestBase64ToolErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		body  Base64Request
		field string
	}{
		{"missing mode", Base64Request{Input: "x"}, "mode"},
		{"unknown mode", Base64Request{Mode: "rot13", Input: "x"}, "mode"},
		{"invalid input", Base64Request{Mode: "decode", Input: "@@@"}, "input"},
		{"binary output", Base64Request{Mode: "decode", Input: "//79"}, "input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/tools/base64", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decode[ErrorResponse](t, rec).Field)
		})
	}
}
