package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?[ \\t]*\\r?\\n?(.*?)```")

var optimizationKeys = []string{"opt_title", "opt_bullets", "opt_description", "keywords"}

// ExtractOptimization pulls the optimization object out of a free-form reply.
// It tries the widest {...} span first, then the first fenced code block.
// Fields the model left out are filled from input so the result is complete.
func ExtractOptimization(reply string, input OptimizeInput) (*OptimizeResult, error) {
	obj, ok := parseObject(braceSpan(reply))
	if !ok {
		obj, ok = parseObject(fencedContent(reply))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParse, truncate(reply, 200))
	}

	return normalize(obj, input), nil
}

func braceSpan(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func fencedContent(s string) string {
	m := fencedBlock.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseObject accepts only JSON objects carrying at least one optimization key.
func parseObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}

	for _, key := range optimizationKeys {
		if _, ok := obj[key]; ok {
			return obj, true
		}
	}
	return nil, false
}

func normalize(obj map[string]any, input OptimizeInput) *OptimizeResult {
	result := &OptimizeResult{
		OptTitle:       stringField(obj["opt_title"]),
		OptBullets:     listField(obj["opt_bullets"]),
		OptDescription: stringField(obj["opt_description"]),
		Keywords:       keywordsField(obj["keywords"]),
	}

	if result.OptTitle == "" {
		result.OptTitle = input.Title
	}
	if len(result.OptBullets) == 0 {
		result.OptBullets = append([]string(nil), input.Bullets...)
	}
	if result.OptDescription == "" {
		result.OptDescription = input.Description
	}

	return result
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// listField coerces a scalar into a single-element slice and drops blanks.
func listField(v any) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case nil:
		return nil
	default:
		items = []any{t}
	}

	var out []string
	for _, item := range items {
		if s := stringField(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func keywordsField(v any) string {
	if list, ok := v.([]any); ok {
		return strings.Join(listField(list), ", ")
	}
	return stringField(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
