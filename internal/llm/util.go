package llm

import "strings"

// CleanJSONBlock strips a markdown code fence (``` or ```json, optionally with
// another language tag) wrapped around a JSON response.
// Structured-output modes rarely fence their output, Gemini occasionally still does.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	if firstLine, rest, ok := strings.Cut(body, "\n"); ok {
		tag := strings.TrimSpace(firstLine)
		if tag == "" || (len(tag) < 20 && !strings.ContainsAny(tag, " {")) {
			body = rest
		}
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
