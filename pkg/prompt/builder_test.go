package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationBuilder_Build(t *testing.T) {
	b := NewGenerationBuilder("We ship a new feature.", "Write 3 tweets.", Settings{
		Tone:     "casual",
		Language: "english",
	})
	out := b.Build()

	assert.Contains(t, out, "<source_content>\nWe ship a new feature.\n</source_content>")
	assert.Contains(t, out, "- Tone: casual")
	assert.Contains(t, out, "- Language: english")
	assert.NotContains(t, out, "Emotion")
	assert.Contains(t, out, "<task>\nWrite 3 tweets.\n</task>")
	assert.Equal(t, out, b.Build())
}

func TestGenerationBuilder_FallbackInstruction(t *testing.T) {
	out := NewGenerationBuilder("x", "  ", Settings{}).Build()
	assert.Contains(t, out, "Generate relevant content based on the source content.")
}

func TestGenerationBuilder_LanguageHint(t *testing.T) {
	assert.Contains(t, NewGenerationBuilder("x", "y", Settings{Language: "mixed"}).Build(), "Mix Bangla and English")
	assert.Contains(t, NewGenerationBuilder("x", "y", Settings{Language: "Bangla"}).Build(), "Write in Bangla")
}
