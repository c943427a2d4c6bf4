package script

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

// promptTemplate is the base prompt for the marketing script generator.
// The generator must answer with a JSON document of the shape
//
//	{"paragraphs": [{"title", "paragraph_text", "audio_script"}, ...]}
//
// so the audio and video stages can process each paragraph independently.
const promptTemplate = `You are a marketing copywriter for a casino rewards program.
Write a short promotional video script in {{.language}} for the comp reward rule below.

Rule data:
{{.rule_data}}

Facts about the rule:
{{.statements}}

Respond with JSON only, using exactly this structure:
{
  "paragraphs": [
    {
      "title": "<short section title in {{.language}}>",
      "paragraph_text": "<on-screen text in {{.language}}>",
      "audio_script": "<voice-over narration in {{.language}}>"
    }
  ]
}

Keep every fact accurate: name only the property numbers and game-type
exclusions stated above, and describe the benefit exactly as calculated.
Do not invent amounts, dates, or terms.`

var scriptPrompt = prompts.NewPromptTemplate(promptTemplate, []string{"language", "rule_data", "statements"})

// BuildPrompt renders the full prompt text for a rule in the requested
// language. The statements slice comes from Statements.
func BuildPrompt(language, ruleData string, statements []string) (string, error) {
	if strings.TrimSpace(language) == "" {
		language = "English"
	}

	lines := make([]string, len(statements))
	for i, s := range statements {
		lines[i] = "- " + s
	}

	rendered, err := scriptPrompt.Format(map[string]any{
		"language":   language,
		"rule_data":  ruleData,
		"statements": strings.Join(lines, "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return rendered, nil
}
