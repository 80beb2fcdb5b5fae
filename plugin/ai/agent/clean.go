package agent

import (
	"regexp"
	"strings"
)

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// CleanResponse strips markdown code fences that models frequently wrap
// around generated code or JSON despite instructions not to.
func CleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```jsx") {
		cleaned = strings.TrimPrefix(cleaned, "```jsx")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// ExtractJSON pulls the most likely JSON object out of a model response.
// It tries, in order: the whole response once fences are stripped, the
// first fenced code block, and finally the outermost brace-delimited
// region. The result is not guaranteed to parse; callers decide what to
// do when it does not.
func ExtractJSON(response string) string {
	cleaned := CleanResponse(response)
	if strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}") {
		return cleaned
	}

	if match := fencedBlockPattern.FindStringSubmatch(response); len(match) == 2 {
		candidate := strings.TrimSpace(match[1])
		if candidate != "" {
			return candidate
		}
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}
