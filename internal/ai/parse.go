package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("ai: response has no JSON object")

var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// StripFences removes markdown code-fence markers.
func StripFences(text string) string {
	return strings.TrimSpace(fenceReplacer.Replace(text))
}

// ExtractJSON pulls the JSON object out of model output: fences are dropped
// and, if the text is not a bare object, the span from the first '{' to the
// last '}' is decoded.
func ExtractJSON(text string, out any) error {
	cleaned := StripFences(text)
	if !strings.HasPrefix(cleaned, "{") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end < start {
			return ErrNoJSON
		}
		cleaned = cleaned[start : end+1]
	}
	return json.Unmarshal([]byte(cleaned), out)
}
