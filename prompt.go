package ragdoc

import (
	"strings"
	"text/template"
)

// DefaultSubject names the documentation in the prompt when none is set.
const DefaultSubject = "the product documented on this site"

// PromptInput holds the values substituted into the answer prompt.
type PromptInput struct {
	Subject  string
	Context  string
	Question string
}

var promptTemplate = template.Must(template.New("prompt").Parse(
	`You are a technical assistant specialized in {{.Subject}}.
Answer the question using only the documentation context below.
If the context does not contain the answer, say that you do not know.

Format the answer in Markdown. Put code, configuration and commands in fenced code blocks.

Context:
{{.Context}}

Question: {{.Question}}

Answer:`))

// BuildPrompt renders the answer prompt. It is a pure function of its input.
func BuildPrompt(in PromptInput) string {
	if in.Subject == "" {
		in.Subject = DefaultSubject
	}
	var b strings.Builder
	// Executing a parsed template with a struct of strings cannot fail.
	_ = promptTemplate.Execute(&b, in)
	return b.String()
}

// FormatContext joins the text of retrieved chunks, in retrieval order,
// separated by blank lines.
func FormatContext(matches []Match) string {
	if len(matches) == 0 {
		return ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Metadata.Text)
	}

	return strings.Join(parts, "\n\n")
}
