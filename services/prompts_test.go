package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticlePrompt(t *testing.T) {
	prompt, err := ArticlePrompt(ArticleInput{
		Topic:     "Remote work",
		Keywords:  []string{"productivity", "async"},
		Tone:      "casual",
		WordCount: 600,
		Language:  "Spanish",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, `in Spanish about "Remote work"`)
	assert.Contains(t, prompt, "Tone: casual.")
	assert.Contains(t, prompt, "about 600 words")
	assert.Contains(t, prompt, "productivity, async")

	prompt, err = ArticlePrompt(ArticleInput{Topic: "Go", Tone: "informative", WordCount: 800, Language: "English"})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "keywords")
}

func TestCaptionPrompt(t *testing.T) {
	prompt, err := CaptionPrompt(CaptionInput{Description: "new cafe", Platform: "instagram", Tone: "playful", Count: 3, Hashtags: true})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Write 3 distinct instagram captions")
	assert.Contains(t, prompt, "relevant hashtags")

	prompt, err = CaptionPrompt(CaptionInput{Description: "new cafe", Platform: "linkedin", Tone: "formal", Count: 1})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Do not use hashtags.")
}

func TestTranslatePrompt(t *testing.T) {
	prompt, err := TranslatePrompt("hola", "auto", "English")
	require.NoError(t, err)
	assert.Contains(t, prompt, "(detect its language) into English")
	assert.Contains(t, prompt, "hola")

	prompt, err = TranslatePrompt("hola", "Spanish", "German")
	require.NoError(t, err)
	assert.Contains(t, prompt, "from Spanish into German")
}

func TestCharacterInstruction(t *testing.T) {
	instruction, err := CharacterInstruction("Ada", "a patient math tutor", "Explain step by step.")
	require.NoError(t, err)
	assert.Contains(t, instruction, "You are Ada, a patient math tutor.")
	assert.Contains(t, instruction, "Explain step by step.")
}

func TestSplitArticle(t *testing.T) {
	title, content := SplitArticle("# Ten Tips for Remote Teams\n\nBody text.", "Remote work")
	assert.Equal(t, "Ten Tips for Remote Teams", title)
	assert.Contains(t, content, "Body text.")

	title, _ = SplitArticle("Intro\n\n## Section One ##\n", "Remote work")
	assert.Equal(t, "Section One", title)

	title, _ = SplitArticle("No heading at all", "Remote work")
	assert.Equal(t, "Remote work", title)
}

func TestParseCaptions(t *testing.T) {
	text := "1. First caption #coffee\n\n- \"Second caption\"\n* Third caption\n4) Fourth caption"
	assert.Equal(t, []string{"First caption #coffee", "Second caption", "Third caption"}, ParseCaptions(text, 3))
	assert.Len(t, ParseCaptions(text, 5), 4)
}
