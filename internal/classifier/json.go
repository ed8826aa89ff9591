package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SafeExtractJSON parses a JSON object out of LLM output that may be
// wrapped in ```json code fences or surrounded by prose. The region
// between the first '{' and the last '}' is what gets parsed; if that
// fails, embedded control whitespace is stripped and parsing is
// attempted once more.
func SafeExtractJSON(raw string, v interface{}) error {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	// Minimal recovery: models sometimes emit raw newlines inside
	// string values.
	replacer := strings.NewReplacer("\r", "", "\n", " ", "\t", " ")
	if err := json.Unmarshal([]byte(replacer.Replace(text)), v); err != nil {
		return fmt.Errorf("failed to extract JSON from model output: %w", err)
	}
	return nil
}
