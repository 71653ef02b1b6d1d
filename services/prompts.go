package services

import (
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

const ChatSystemInstruction = "You are Marko, a friendly writing and marketing assistant. " +
	"Answer clearly and concisely. Use Markdown when it helps readability."

var (
	articleTemplate = prompts.NewPromptTemplate(
		`Write a complete blog article in {{.language}} about "{{.topic}}".
Tone: {{.tone}}.
Target length: about {{.wordCount}} words.
{{- if .keywords}}
Work these keywords in naturally: {{.keywords}}.
{{- end}}
Start with a single level-one Markdown heading containing the title, then the article body in Markdown.`,
		[]string{"language", "topic", "tone", "wordCount", "keywords"},
	)

	captionTemplate = prompts.NewPromptTemplate(
		`Write {{.count}} distinct {{.platform}} captions for the following post.
Tone: {{.tone}}.
Post: {{.description}}
{{- if .hashtags}}
End each caption with two to four relevant hashtags.
{{- else}}
Do not use hashtags.
{{- end}}
Return exactly one caption per line with no numbering and no extra commentary.`,
		[]string{"count", "platform", "tone", "description", "hashtags"},
	)

	translateTemplate = prompts.NewPromptTemplate(
		`Translate the text below {{if .auto}}(detect its language){{else}}from {{.source}}{{end}} into {{.target}}.
Return only the translation, preserving line breaks and formatting.

{{.text}}`,
		[]string{"auto", "source", "target", "text"},
	)

	characterTemplate = prompts.NewPromptTemplate(
		`You are {{.name}}{{if .tagline}}, {{.tagline}}{{end}}. Stay in character for the whole conversation.
{{.persona}}`,
		[]string{"name", "tagline", "persona"},
	)
)

type ArticleInput struct {
	Topic     string
	Keywords  []string
	Tone      string
	WordCount int
	Language  string
}

func ArticlePrompt(in ArticleInput) (string, error) {
	return articleTemplate.Format(map[string]any{
		"language":  in.Language,
		"topic":     in.Topic,
		"tone":      in.Tone,
		"wordCount": in.WordCount,
		"keywords":  strings.Join(in.Keywords, ", "),
	})
}

type CaptionInput struct {
	Description string
	Platform    string
	Tone        string
	Count       int
	Hashtags    bool
}

func CaptionPrompt(in CaptionInput) (string, error) {
	return captionTemplate.Format(map[string]any{
		"count":       in.Count,
		"platform":    in.Platform,
		"tone":        in.Tone,
		"description": in.Description,
		"hashtags":    in.Hashtags,
	})
}

// TranslatePrompt builds the translation prompt; source "auto" asks the model to detect it.
func TranslatePrompt(text, source, target string) (string, error) {
	return translateTemplate.Format(map[string]any{
		"auto":   strings.EqualFold(source, "auto") || source == "",
		"source": source,
		"target": target,
		"text":   text,
	})
}

// CharacterInstruction is the system instruction for chatting as a character.
func CharacterInstruction(name, tagline, persona string) (string, error) {
	return characterTemplate.Format(map[string]any{
		"name":    name,
		"tagline": tagline,
		"persona": persona,
	})
}

var headingPattern = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+(.+?)\s*#*\s*$`)

// SplitArticle returns the first Markdown heading as the title, falling back to fallbackTitle.
// The content is returned unchanged.
func SplitArticle(content, fallbackTitle string) (string, string) {
	if m := headingPattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), content
	}
	return fallbackTitle, content
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// ParseCaptions splits a model response into at most max captions, one per line.
func ParseCaptions(text string, max int) []string {
	var captions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		captions = append(captions, line)
		if len(captions) == max {
			break
		}
	}
	return captions
}
