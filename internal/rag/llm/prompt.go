package llm

import (
	"fmt"
	"strings"
)

// BuildUserPrompt lays the assembled course context ahead of the question,
// with the recent conversation in between so follow-ups resolve correctly.
// Shared by every provider so swapping models keeps the prompt contract.
func BuildUserPrompt(query string, contextBlock string, history []string) string {
	var b strings.Builder
	if contextBlock != "" {
		b.WriteString("Course material:\n")
		b.WriteString(contextBlock)
		b.WriteString("\n\n")
	}
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		b.WriteString(strings.Join(history, "\n"))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "User Question: %s", query)
	return b.String()
}
