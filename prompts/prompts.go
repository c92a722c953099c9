package prompts

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

// RenderSystemPrompt renders the course assistant system prompt from the
// embedded template.
func RenderSystemPrompt() (string, error) {
	content, err := templatesFS.ReadFile("templates/course_assistant_system.md")
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("course_assistant_system").Parse(string(content))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", err
	}

	return buf.String(), nil
}
