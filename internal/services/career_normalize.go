package services

import (
	"encoding/json"
	"strings"

	"github.com/sahyog-labs/disha/internal/models"
)

// defaultConfidence applies when the model returned a mapping without any
// confidence field.
const defaultConfidence = 0.8

// rawStructured mirrors the mapping schema but keeps confidence optional so
// the alternate key and the default can be resolved explicitly.
type rawStructured struct {
	Summary          string                 `json:"summary"`
	Industries       []string               `json:"industries"`
	GovtExams        []string               `json:"govtExams"`
	Jobs             []models.JobSuggestion `json:"jobs"`
	HigherEducation  []string               `json:"higherEducation"`
	Entrepreneurship []string               `json:"entrepreneurship"`
	ConfidenceScore  *float64               `json:"confidence_score"`
	Confidence       *float64               `json:"confidence"`
}

// parseStructured converts raw model text into a typed mapping. The second
// return value is false when no JSON object could be recovered; malformed
// output is an expected condition, never an error.
func parseStructured(text string) (*models.CareerStructured, bool) {
	if text == "" {
		return nil, false
	}
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if strings.HasPrefix(cleaned, "{") {
		if st, ok := decodeStructured(cleaned); ok {
			return st, true
		}
	}
	if candidate, ok := firstBracedObject(cleaned); ok {
		if st, ok := decodeStructured(candidate); ok {
			return st, true
		}
	}
	return nil, false
}

func decodeStructured(s string) (*models.CareerStructured, bool) {
	var raw rawStructured
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, false
	}
	confidence := defaultConfidence
	switch {
	case raw.ConfidenceScore != nil:
		confidence = *raw.ConfidenceScore
	case raw.Confidence != nil:
		confidence = *raw.Confidence
	}
	return &models.CareerStructured{
		Summary:          raw.Summary,
		Industries:       raw.Industries,
		GovtExams:        raw.GovtExams,
		Jobs:             raw.Jobs,
		HigherEducation:  raw.HigherEducation,
		Entrepreneurship: raw.Entrepreneurship,
		ConfidenceScore:  confidence,
	}, true
}

// firstBracedObject extracts the first balanced {...} substring, skipping
// braces inside JSON string literals.
func firstBracedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
