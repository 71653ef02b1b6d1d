package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHashtag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go Lang", "golang"},
		{"#Marketing", "marketing"},
		{"snake_case", "snake_case"},
		{"state-of-the-art", "stateoftheart"},
		{"2024 recap", ""},
		{"   ", ""},
		{"¡Olé!", "ol"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHashtag(tt.in))
		})
	}
}

func TestExtractHashtags(t *testing.T) {
	text := "Launch day! #AI #ai #Marketing, #2024 and #growth_hacking."
	assert.Equal(t, []string{"#ai", "#marketing", "#growth_hacking"}, ExtractHashtags(text))
	assert.Empty(t, ExtractHashtags("no tags here"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Crème Brûlée  Recipes ", "creme-brulee-recipes"},
		{"AI & You: 10 Tips", "ai-you-10-tips"},
		{"---", ""},
		{"日本語", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "word "
	}
	slug := Slugify(long)
	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.NotEqual(t, '-', rune(slug[len(slug)-1]))
}

func TestBuildBlogPostURL(t *testing.T) {
	assert.Equal(t, "https://marko.ai/blog/hello", BuildBlogPostURL("https://marko.ai/", "hello"))
	assert.Empty(t, BuildBlogPostURL("", "hello"))
	assert.Empty(t, BuildBlogPostURL("https://marko.ai", ""))
}

func TestGetBaseURL(t *testing.T) {
	assert.Equal(t, "https://marko.ai", GetBaseURL(map[string]string{"BASE_URL": "https://marko.ai/"}))
	assert.Empty(t, GetBaseURL(map[string]string{}))
}
