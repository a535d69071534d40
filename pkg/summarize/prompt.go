package summarize

import (
	"fmt"
	"strings"
)

const systemPrompt = `You summarize provisions of European Union legislation for practitioners.
Write a faithful plain-English summary of the provision in at most %d sentences.
Do not add obligations, exceptions or dates that are not in the text.
Use the recitals only to clarify intent; the article text governs.`

// maxContextPassages bounds how many supporting passages go into a prompt.
const maxContextPassages = 5

func buildSystemPrompt(request Request) string {
	return fmt.Sprintf(systemPrompt, request.MaxSentences)
}

func buildUserPrompt(request Request) string {
	var builder strings.Builder
	if request.Title != "" {
		builder.WriteString(request.Title)
		builder.WriteString("\n\n")
	}
	builder.WriteString(strings.TrimSpace(request.Text))

	passages := request.Context
	if len(passages) > maxContextPassages {
		passages = passages[:maxContextPassages]
	}
	if len(passages) > 0 {
		builder.WriteString("\n\nRelated recitals:\n")
		for _, passage := range passages {
			builder.WriteString("- ")
			builder.WriteString(strings.TrimSpace(passage))
			builder.WriteString("\n")
		}
	}
	return builder.String()
}
