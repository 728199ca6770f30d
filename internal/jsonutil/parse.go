// Package jsonutil parses JSON objects out of LLM responses that may be
// wrapped in markdown code fences or surrounded by prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text if no fences are found.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	endIdx := len(lines) - 1
	for i := len(lines) - 1; i >= 1; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}

	return strings.Join(lines[1:endIdx], "\n")
}

// ExtractObject returns the outermost brace-delimited substring of text:
// from the first "{" to the last "}". Used as the fallback when a response
// embeds the JSON object in surrounding prose.
func ExtractObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	end := strings.LastIndex(text, "}")
	if end <= start {
		return "", fmt.Errorf("no closing brace found")
	}
	return text[start : end+1], nil
}

// ParseObject unmarshals a JSON object from raw LLM response text into T.
// It first attempts a direct parse of the fence-stripped text, then falls
// back to the outermost brace-delimited substring. Both stages failing is an
// error; callers decide whether to degrade.
func ParseObject[T any](raw string) (T, error) {
	var result T

	text := StripMarkdownFences(raw)
	if err := json.Unmarshal([]byte(text), &result); err == nil {
		return result, nil
	}

	jsonStr, err := ExtractObject(text)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		var zero T
		preview := jsonStr
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
