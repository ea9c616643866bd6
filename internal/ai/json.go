package ai

import (
	"fmt"
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?m)^```json|^```|```$")

// extractJSON pulls one JSON object out of a free-text AI response. It strips
// code-fence markers, then takes the substring between the first '{' and the
// last '}'. A brace-count mismatch means the response was likely truncated
// and counts as a failure. The widest span can over-capture when the
// response holds several JSON-looking fragments; callers accept that.
func extractJSON(text string) ([]byte, error) {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(strings.TrimSpace(text), ""))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	jsonStr := cleaned[start : end+1]
	if strings.Count(jsonStr, "{") != strings.Count(jsonStr, "}") {
		return nil, fmt.Errorf("unbalanced braces, response looks truncated")
	}
	return []byte(jsonStr), nil
}
