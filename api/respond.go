package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/markoai/marko-backend/errs"
)

const maxResponseSize = 10 * 1024 * 1024

type Responder struct {
	logger          zerolog.Logger
	errorWebhookURL string
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger: logger}
}

// WithErrorWebhook makes WriteError post unexpected errors to url.
func (r Responder) WithErrorWebhook(url string) Responder {
	r.errorWebhookURL = url
	return r
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus encodes data and writes it with status. Bodies over
// maxResponseSize are replaced by a 500.
func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	switch {
	case err != nil:
		r.logger.Error().Err(err).Type("type", data).Msg("Cannot encode response")
		status, body = http.StatusInternalServerError, []byte(`{"error":"Internal Server Error","status":"error"}`)
	case len(body) > maxResponseSize:
		r.logger.Error().Int("bytes", len(body)).Msg("Response exceeds size limit")
		status, body = http.StatusInternalServerError, []byte(`{"error":"response too large","status":"error"}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.logger.Debug().Err(err).Msg("Client went away before the response was written")
	}
}

type errorAlert struct {
	Service      string    `json:"service"`
	ErrorMessage string    `json:"errorMessage"`
	At           time.Time `json:"at"`
}

// SendErrorNotification posts errMsg to ERROR_WEBHOOK_URL in the background.
func (r Responder) SendErrorNotification(errMsg string) {
	if r.errorWebhookURL == "" {
		return
	}
	body, err := json.Marshal(errorAlert{Service: "marko-backend", ErrorMessage: errMsg, At: time.Now().UTC()})
	if err != nil {
		return
	}

	go func(url string, logger zerolog.Logger) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			logger.Error().Err(err).Msg("Bad error webhook URL")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			logger.Warn().Err(err).Msg("Error webhook unreachable")
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusMultipleChoices {
			logger.Warn().Int("status", resp.StatusCode).Msg("Error webhook rejected alert")
		}
	}(r.errorWebhookURL, r.logger)
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// Unexpected errors are logged and hidden behind a generic 500.
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.SendErrorNotification(err.Error())
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Int("status", apiErr.StatusCode).Msg(apiErr.GetFullError())
	}

	response := ErrorResponse{
		Error:   apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}
	if apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
