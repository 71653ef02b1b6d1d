package services

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrNotText = errors.New("decoded data is not valid UTF-8 text")

func EncodeBase64(input string, urlSafe bool) string {
	if urlSafe {
		return base64.URLEncoding.EncodeToString([]byte(input))
	}
	return base64.StdEncoding.EncodeToString([]byte(input))
}

// DecodeBase64 accepts padded or unpadded input. Whitespace (line wrapping) is ignored.
func DecodeBase64(input string, urlSafe bool) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, input)
	cleaned = strings.TrimRight(cleaned, "=")

	enc := base64.RawStdEncoding
	if urlSafe {
		enc = base64.RawURLEncoding
	}
	out, err := enc.DecodeString(cleaned)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return "", ErrNotText
	}
	return string(out), nil
}
