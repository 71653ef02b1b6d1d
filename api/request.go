package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/markoai/marko-backend/errs"
)

// decodeJSON reads a single JSON document from the request body into dst.
func decodeJSON(r *http.Request, dst any, payloadName string) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewMalformedPayloadError(payloadName, errors.New("empty body"))
		default:
			return errs.NewMalformedPayloadError(payloadName, err)
		}
	}
	return nil
}

// parseID reads a positive integer URL parameter.
func parseID(r *http.Request, param string) (uint, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errs.NewInvalidFieldError(param, "must be a positive integer")
	}
	return uint(id), nil
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, errs.NewOutOfRangeError(name, min, max)
	}
	return v, nil
}

// requireText trims value and checks it is present and at most maxChars characters.
func requireText(field, value string, maxChars int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errs.NewMissingRequiredFieldError(field)
	}
	if maxChars > 0 && utf8.RuneCountInString(value) > maxChars {
		return "", errs.NewTooLongError(field, maxChars)
	}
	return value, nil
}

// optionalText trims value and falls back to def when it is blank.
func optionalText(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
