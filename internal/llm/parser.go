package llm

import (
	"errors"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in response")

// cleanMarkdownWrapper strips a ```json fence around content, if present.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		// Drop the language tag line.
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// extractJSONObject returns the outermost {...} span of content, tolerating
// chatter around it.
func extractJSONObject(content string) (string, error) {
	content = cleanMarkdownWrapper(content)
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end < start {
		return "", errNoJSONObject
	}
	return content[start : end+1], nil
}
