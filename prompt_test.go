package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePrompt(t *testing.T) {
	prompt := ComposePrompt("  Write about ber months promos.\n", defaultDirectives).String()

	assert.True(t, strings.HasPrefix(prompt, "Use these instructions: Write about ber months promos.\n\n"))
	for _, k := range defaultDirectives.Keywords {
		assert.Contains(t, prompt, "'"+k+"'")
	}
	for _, c := range Categories {
		assert.Contains(t, prompt, "'"+string(c)+"'")
	}
	for _, field := range []string{"title", "description", "content_html", "category", "excerpt", "slug", "social_poster_text", "social_caption"} {
		assert.Contains(t, prompt, "- "+field+": String")
	}
	assert.Contains(t, prompt, "#SMEPhilippines #StampCircle #CustomerLoyalty")
	assert.True(t, strings.HasSuffix(prompt, "Return ONLY the JSON.\n"))
}

func TestComposePrompt_IsDeterministic(t *testing.T) {
	a := ComposePrompt("same", defaultDirectives)
	b := ComposePrompt("same", defaultDirectives)

	assert.Equal(t, a, b)
}

func TestComposePrompt_NoHashtags(t *testing.T) {
	d := defaultDirectives
	d.Hashtags = nil

	prompt := ComposePrompt("x", d).String()

	assert.Contains(t, prompt, "- social_caption: String (Caption for social media)\n")
}

func TestLoadInstructions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	writeFile(t, path, "Focus on sari-sari stores.")

	got, err := LoadInstructions(path)

	require.NoError(t, err)
	assert.Equal(t, "Focus on sari-sari stores.", got)
}

func TestLoadInstructions_Missing(t *testing.T) {
	_, err := LoadInstructions(filepath.Join(t.TempDir(), "prompt.txt"))

	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StagePrecondition, StageOf(err))
}
