package prompt

import (
	"encoding/json"
	"regexp"
	"strings"

	"docanalyze/internal/models"
)

var thinkRe = regexp.MustCompile(models.ThinkTag)

// cleanModelOutput removes reasoning blocks and markdown code fences so the
// remainder can be parsed or shown as-is.
func cleanModelOutput(raw string) string {
	s := thinkRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func decodeModelJSON(raw string, v any) error {
	return json.Unmarshal([]byte(cleanModelOutput(raw)), v)
}
