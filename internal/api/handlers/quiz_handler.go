package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
	"github.com/sahyog-labs/disha/internal/services"
)

const (
	quizNearbyRadiusKm = 30
	quizNearbyLimit    = 10
)

type QuizHandler struct {
	dbclient core.DbClient
}

func NewQuizHandler(dbclient core.DbClient) *QuizHandler {
	return &QuizHandler{dbclient: dbclient}
}

type quizRequest struct {
	Answers  map[string]string `json:"answers"`
	Location *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

type quizResponse struct {
	RankedStreams    []services.StreamScore      `json:"ranked_streams"`
	SuggestedCourses []services.CourseSuggestion `json:"suggested_courses"`
	NearbyColleges   []models.College            `json:"nearby_colleges"`
}

// Submit scores the quiz and, when a location is given, attaches colleges
// within 30 km offering the suggested courses.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "Invalid body")
		return
	}

	result := services.ScoreQuiz(req.Answers)

	nearby := []models.College{}
	if req.Location != nil && req.Location.Lat != 0 && req.Location.Lon != 0 {
		courses := make([]string, 0, len(result.SuggestedCourses))
		for _, c := range result.SuggestedCourses {
			courses = append(courses, c.Course)
		}
		found, err := h.dbclient.FindCollegesNear(r.Context(), req.Location.Lat, req.Location.Lon, quizNearbyRadiusKm, courses, quizNearbyLimit)
		if err != nil {
			respondServerErr(w, "quiz.submit", err)
			return
		}
		if found != nil {
			nearby = found
		}
	}

	respondOK(w, quizResponse{
		RankedStreams:    result.RankedStreams,
		SuggestedCourses: result.SuggestedCourses,
		NearbyColleges:   nearby,
	})
}
