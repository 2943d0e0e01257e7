package gap

import (
	"fmt"
	"sort"
	"strings"
)

// Priority ranks a gap's importance.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Strength is a matching point between resume and JD with its evidence.
type Strength struct {
	Point    string `json:"point"`
	Evidence string `json:"evidence"`
}

// Gap is a JD requirement not clearly evidenced in the resume.
type Gap struct {
	Point      string   `json:"point"`
	Priority   Priority `json:"priority"`
	Suggestion string   `json:"suggestion"`
}

// Keyword is a JD keyword with optional resume evidence and a recommended
// phrasing.
type Keyword struct {
	JDKeyword         string  `json:"jd_keyword"`
	Evidence          *string `json:"evidence"`
	RecommendedPhrase string  `json:"recommended_phrase"`
}

// Result is the validated gap analysis produced per request. It has no
// lifecycle of its own and is never persisted.
type Result struct {
	MatchScore     int        `json:"match_score"`
	Summary        string     `json:"summary"`
	Strengths      []Strength `json:"strengths"`
	Gaps           []Gap      `json:"gaps"`
	Keywords       []Keyword  `json:"keywords"`
	CraftQuestions []string   `json:"craft_questions"`
}

// SchemaError reports a model response element missing its required
// identifying field. Such elements are never silently dropped.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model response element missing required field %q", e.Field)
}

const defaultSummary = "Analysis complete"

// normalizeResult coerces the raw model output into a Result, applying the
// lenient per-field defaults and failing hard only on missing required
// identifying fields.
func normalizeResult(raw map[string]any) (Result, error) {
	result := Result{
		MatchScore:     clampScore(intOrDefault(raw["match_score"], 50)),
		Summary:        stringOrDefault(raw["summary"], defaultSummary),
		Strengths:      []Strength{},
		Gaps:           []Gap{},
		Keywords:       []Keyword{},
		CraftQuestions: []string{},
	}

	for _, item := range listOf(raw["strengths"]) {
		point, ok := requiredString(item, "point")
		if !ok {
			return Result{}, &SchemaError{Field: "point"}
		}
		result.Strengths = append(result.Strengths, Strength{
			Point:    point,
			Evidence: stringOrDefault(item["evidence"], ""),
		})
	}

	for _, item := range listOf(raw["gaps"]) {
		point, ok := requiredString(item, "point")
		if !ok {
			return Result{}, &SchemaError{Field: "point"}
		}
		result.Gaps = append(result.Gaps, Gap{
			Point:      point,
			Priority:   normalizePriority(item["priority"]),
			Suggestion: stringOrDefault(item["suggestion"], ""),
		})
	}
	sortGaps(result.Gaps)

	for _, item := range listOf(raw["keywords"]) {
		keyword, ok := requiredString(item, "jd_keyword")
		if !ok {
			return Result{}, &SchemaError{Field: "jd_keyword"}
		}
		result.Keywords = append(result.Keywords, Keyword{
			JDKeyword:         keyword,
			Evidence:          optionalString(item["evidence"]),
			RecommendedPhrase: stringOrDefault(item["recommended_phrase"], ""),
		})
	}

	if questions, ok := raw["craft_questions"].([]any); ok {
		for _, q := range questions {
			if s, ok := q.(string); ok {
				result.CraftQuestions = append(result.CraftQuestions, s)
			}
		}
	}

	return result, nil
}

// sortGaps orders high before medium before low, keeping the model's order
// within a priority.
func sortGaps(gaps []Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		return priorityRank[gaps[i].Priority] < priorityRank[gaps[j].Priority]
	})
}

func normalizePriority(v any) Priority {
	s, _ := v.(string)
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// listOf extracts a list of JSON objects. Elements of any other shape are
// treated as objects missing every field, so the required-field checks catch
// them downstream.
func listOf(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		out = append(out, m)
	}
	return out
}

func requiredString(m map[string]any, field string) (string, bool) {
	s, ok := m[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func stringOrDefault(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func optionalString(v any) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

func intOrDefault(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}
