package services

import (
	"math"
	"sort"
	"strings"
)

// streamKeys is the ranking tie-break order.
var streamKeys = []string{"Science", "Commerce", "Arts", "Vocational"}

// optionWeights maps question -> chosen option -> weight vector over
// streamKeys.
var optionWeights = map[string]map[string][4]int{
	"q1": {
		"a": {2, 0, 0, 0},
		"b": {0, 0, 2, 0},
		"c": {0, 2, 0, 0},
		"d": {0, 0, 0, 2},
	},
	"q2": {
		"a": {2, 0, 0, 0},
		"b": {0, 2, 0, 0},
		"c": {0, 0, 2, 0},
		"d": {0, 0, 0, 2},
	},
}

var sampleCourses = map[string][]string{
	"Science":    {"B.Sc", "BCA"},
	"Commerce":   {"B.Com", "BBA"},
	"Arts":       {"B.A", "BFA"},
	"Vocational": {"Diploma", "ITI"},
}

type StreamScore struct {
	Stream string  `json:"stream"`
	Score  float64 `json:"score"`
}

type CourseSuggestion struct {
	Course string `json:"course"`
	Why    string `json:"why"`
}

type QuizResult struct {
	RankedStreams    []StreamScore      `json:"ranked_streams"`
	SuggestedCourses []CourseSuggestion `json:"suggested_courses"`
	TopStream        string             `json:"-"`
}

// ScoreQuiz maps the answers onto the four streams, normalizes by total
// weight and ranks descending. Ties keep the streamKeys order. Pure function,
// no I/O.
func ScoreQuiz(answers map[string]string) QuizResult {
	raw := rawScores(answers)

	total := 0
	for _, k := range streamKeys {
		total += raw[k]
	}
	if total == 0 {
		total = 1
	}

	ranked := make([]StreamScore, 0, len(streamKeys))
	for _, k := range streamKeys {
		score := math.Round(float64(raw[k])/float64(total)*100) / 100
		ranked = append(ranked, StreamScore{Stream: k, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	top := ranked[0].Stream
	courses := sampleCourses[top]
	suggestions := make([]CourseSuggestion, 0, len(courses))
	for _, c := range courses {
		suggestions = append(suggestions, CourseSuggestion{Course: c, Why: "Matches " + top})
	}

	return QuizResult{RankedStreams: ranked, SuggestedCourses: suggestions, TopStream: top}
}

func rawScores(answers map[string]string) map[string]int {
	scores := map[string]int{}
	for q, a := range answers {
		mapping, ok := optionWeights[q]
		if !ok {
			continue
		}
		w, ok := mapping[strings.ToLower(strings.TrimSpace(a))]
		if !ok {
			continue
		}
		for i, k := range streamKeys {
			scores[k] += w[i]
		}
	}
	return scores
}
