package prompt

import (
	"fmt"
	"strings"

	"ai-studymate-be/pkg/persona"
	"ai-studymate-be/pkg/search"
)

// ContextualBuilder builds persona-aware study prompts
type ContextualBuilder struct {
	profile persona.Profile
	query   string
	results []search.Result
}

// NewContextualBuilder creates a new contextual prompt builder
func NewContextualBuilder(profile persona.Profile, query string, results []search.Result) *ContextualBuilder {
	return &ContextualBuilder{
		profile: profile,
		query:   query,
		results: results,
	}
}

// Build creates a semantic prompt that trusts LLM intelligence
func (b *ContextualBuilder) Build() string {
	var prompt strings.Builder

	b.writePersona(&prompt)
	b.writeReferenceMaterial(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuery(&prompt)

	return prompt.String()
}

func (b *ContextualBuilder) writePersona(prompt *strings.Builder) {
	prompt.WriteString("<persona>\n")
	prompt.WriteString(fmt.Sprintf("You are a study assistant in %s mode.\n", b.profile.Mode))
	prompt.WriteString(b.profile.Framing)
	prompt.WriteString("\n")
	prompt.WriteString(fmt.Sprintf(
		"Calibrate your tone: formality %.1f, directiveness %.1f, encouragement %.1f (each on a 0-1 scale).\n",
		b.profile.Tone.Formality, b.profile.Tone.Directiveness, b.profile.Tone.Encouragement,
	))
	prompt.WriteString("</persona>\n\n")
}

func (b *ContextualBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	if len(b.results) == 0 {
		return
	}

	prompt.WriteString("<reference_material>\n")
	for i, r := range b.results {
		prompt.WriteString(fmt.Sprintf("[%d]", i+1))
		if r.Chunk.Topic != "" {
			prompt.WriteString(" (" + r.Chunk.Topic + ")")
		}
		prompt.WriteString("\n")
		prompt.WriteString(r.Chunk.Text)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *ContextualBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the reference material provided\n")
	prompt.WriteString("2. Cite passages by their bracketed number, like [1], where you use them\n")
	prompt.WriteString("3. Be complete - don't skip relevant information from the material\n")
	prompt.WriteString("4. If the material doesn't contain what's being asked, say so honestly\n")
	prompt.WriteString("5. Stay in character for your persona throughout the response\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *ContextualBuilder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.query)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now provide your complete response based on the reference material:")
}
