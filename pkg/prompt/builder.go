// Package prompt turns a generation request into model input.
package prompt

import (
	"strings"
)

// Settings are the creator-facing knobs that shape the output.
type Settings struct {
	Tone         string
	Emotion      string
	Language     string
	TargetRegion string
	CreatorNotes string
}

// GenerationBuilder builds the prompt for one tool run
type GenerationBuilder struct {
	source      string
	instruction string
	settings    Settings
}

func NewGenerationBuilder(source, instruction string, settings Settings) *GenerationBuilder {
	return &GenerationBuilder{
		source:      source,
		instruction: instruction,
		settings:    settings,
	}
}

// Build is deterministic: the same inputs always give the same prompt.
func (b *GenerationBuilder) Build() string {
	var prompt strings.Builder

	b.writeSource(&prompt)
	b.writeSettings(&prompt)
	b.writeTask(&prompt)
	b.writeRequirements(&prompt)

	return strings.TrimSpace(prompt.String())
}

func (b *GenerationBuilder) writeSource(prompt *strings.Builder) {
	prompt.WriteString("<source_content>\n")
	prompt.WriteString(b.source)
	prompt.WriteString("\n</source_content>\n\n")
}

func (b *GenerationBuilder) writeSettings(prompt *strings.Builder) {
	prompt.WriteString("<settings>\n")
	writeSetting(prompt, "Target region", b.settings.TargetRegion)
	writeSetting(prompt, "Emotion", b.settings.Emotion)
	writeSetting(prompt, "Tone", b.settings.Tone)
	writeSetting(prompt, "Language", b.settings.Language)
	writeSetting(prompt, "Creator notes", b.settings.CreatorNotes)
	prompt.WriteString("</settings>\n\n")
}

func writeSetting(prompt *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	prompt.WriteString("- ")
	prompt.WriteString(label)
	prompt.WriteString(": ")
	prompt.WriteString(value)
	prompt.WriteString("\n")
}

func (b *GenerationBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	if strings.TrimSpace(b.instruction) == "" {
		prompt.WriteString("Generate relevant content based on the source content.\n")
	} else {
		prompt.WriteString(b.instruction)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</task>\n\n")
}

func (b *GenerationBuilder) writeRequirements(prompt *strings.Builder) {
	prompt.WriteString("<requirements>\n")
	prompt.WriteString("- Treat the source content as the single source of truth\n")
	prompt.WriteString("- Respect every setting above\n")
	prompt.WriteString("- Keep the output platform-appropriate and specific to this content\n")
	prompt.WriteString("- Do not use excessive emojis unless the tone calls for it\n")
	switch strings.ToLower(b.settings.Language) {
	case "bangla":
		prompt.WriteString("- Write in Bangla where appropriate\n")
	case "mixed":
		prompt.WriteString("- Mix Bangla and English naturally\n")
	}
	prompt.WriteString("</requirements>\n")
}
