package llm

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "applicant-pipeline/internal/common/errors"
	"applicant-pipeline/internal/models"
)

// evaluationSchema is the shape a JSON response must satisfy before it is
// trusted.
const evaluationSchema = `{
	"type": "object",
	"required": ["summary", "score", "issues", "follow_ups"],
	"properties": {
		"summary":    {"type": "string"},
		"score":      {"type": "number"},
		"issues":     {"type": "array", "items": {"type": "string"}},
		"follow_ups": {"type": "array", "items": {"type": "string"}}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(evaluationSchema)

// ParseResponse maps raw model output to an Evaluation. Two formats are
// accepted: a JSON object matching evaluationSchema, or the labeled layout
// requested by the prompt (Summary:/Score:/Issues:/Follow-Ups:). Anything
// else fails with LLM_PARSE_FAILED.
func ParseResponse(text string) (*models.Evaluation, error) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return nil, apperrors.NewLLMParseFailedError("empty response")
	}

	if strings.HasPrefix(text, "{") {
		return parseJSON(text)
	}
	return parseLabeled(text)
}

func parseJSON(text string) (*models.Evaluation, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, apperrors.NewLLMParseFailedError("invalid JSON: " + err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, apperrors.NewLLMParseFailedError(strings.Join(details, "; "))
	}

	var raw struct {
		Summary   string   `json:"summary"`
		Score     float64  `json:"score"`
		Issues    []string `json:"issues"`
		FollowUps []string `json:"follow_ups"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, apperrors.NewLLMParseFailedError(err.Error())
	}

	return &models.Evaluation{
		Summary:   strings.TrimSpace(raw.Summary),
		Score:     int(raw.Score),
		Issues:    normalizeList(raw.Issues),
		FollowUps: normalizeList(raw.FollowUps),
	}, nil
}

func parseLabeled(text string) (*models.Evaluation, error) {
	eval := &models.Evaluation{Issues: []string{}, FollowUps: []string{}}
	matched := false

	lines := nonEmptyLines(text)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		low := strings.ToLower(line)
		switch {
		case strings.HasPrefix(low, "summary:"):
			eval.Summary = valueAfterColon(line)
			matched = true
		case strings.HasPrefix(low, "score:"):
			eval.Score = digitsToInt(valueAfterColon(line))
			matched = true
		case strings.HasPrefix(low, "issues:"):
			matched = true
			if inline := valueAfterColon(line); inline != "" && !strings.EqualFold(inline, "none") {
				eval.Issues = splitIssues(inline)
			} else {
				eval.Issues, i = collectBullets(lines, i)
			}
		case strings.HasPrefix(low, "follow-ups") || strings.HasPrefix(low, "follow ups"):
			matched = true
			eval.FollowUps, i = collectBullets(lines, i)
		}
	}

	if !matched || (eval.Summary == "" && eval.Score == 0) {
		return nil, apperrors.NewLLMParseFailedError("no recognizable labels in response")
	}
	return eval, nil
}

// collectBullets gathers the "- item" lines following lines[start] and
// returns the new scan index.
func collectBullets(lines []string, start int) ([]string, int) {
	items := []string{}
	i := start
	for i+1 < len(lines) {
		next := lines[i+1]
		if !strings.HasPrefix(next, "-") && !strings.HasPrefix(next, "•") {
			break
		}
		if item := strings.TrimSpace(strings.TrimLeft(next, "-•")); item != "" {
			items = append(items, item)
		}
		i++
	}
	return items, i
}

func splitIssues(inline string) []string {
	parts := strings.Split(inline, ";")
	issues := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			issues = append(issues, p)
		}
	}
	return issues
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func valueAfterColon(line string) string {
	_, after, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}

func digitsToInt(s string) int {
	n := 0
	seen := false
	for _, c := range s {
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			seen = true
		} else if seen {
			break
		}
	}
	return n
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// stripFence unwraps a ```json fenced block when the model ignores the
// no-markdown instruction.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
