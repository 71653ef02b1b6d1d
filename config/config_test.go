package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("MARKO_TEST_KEY", "a=b")

	c := New()

	assert.Equal(t, "a=b", c["MARKO_TEST_KEY"])
}

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":    "9090",
		"BAD_INT": "nine",
		"SECURE":  "true",
		"TIMEOUT": "45",
		"ORIGINS": " https://a.example , ,https://b.example",
		"EMPTY":   "",
		"NEG":     "-5",
		"PADDED":  " 12 ",
	}

	t.Run("strings fall back when missing or empty", func(t *testing.T) {
		assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
		assert.Equal(t, "x", GetString(c, "EMPTY", "x"))
		assert.Equal(t, "x", GetString(nil, "PORT", "x"))
	})

	t.Run("ints", func(t *testing.T) {
		assert.Equal(t, 9090, GetInt(c, "PORT", 1))
		assert.Equal(t, 1, GetInt(c, "BAD_INT", 1))
		assert.Equal(t, 1, GetInt(c, "MISSING", 1))
		assert.Equal(t, 12, GetInt(c, "PADDED", 1))
	})

	t.Run("bools", func(t *testing.T) {
		assert.True(t, GetBool(c, "SECURE", false))
		assert.False(t, GetBool(c, "BAD_INT", false))
		assert.True(t, GetBool(c, "MISSING", true))
	})

	t.Run("durations are seconds", func(t *testing.T) {
		assert.Equal(t, 45*time.Second, GetDuration(c, "TIMEOUT", time.Second))
		assert.Equal(t, time.Second, GetDuration(c, "MISSING", time.Second))
		assert.Equal(t, time.Second, GetDuration(c, "NEG", time.Second))
	})

	t.Run("lists", func(t *testing.T) {
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetList(c, "ORIGINS"))
		assert.Nil(t, GetList(c, "EMPTY"))
	})
}
