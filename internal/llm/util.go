package llm

import "strings"

const fence = "```"

// StripFence returns the body of a response wrapped in a single markdown code fence,
// with or without an info string ("```json"). Anything else is returned trimmed but
// otherwise untouched; prose around a JSON object is left for the feedback parser to reject.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	body := strings.TrimPrefix(text, fence)
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isInfoString(body[:nl]) {
		body = body[nl+1:]
	} else if strings.HasPrefix(body, "json") {
		body = strings.TrimPrefix(body, "json")
	}
	if end := strings.LastIndex(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// isInfoString reports whether the first fence line names a language rather than starting the payload.
func isInfoString(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) < 20 && !strings.ContainsAny(line, " {[")
}
