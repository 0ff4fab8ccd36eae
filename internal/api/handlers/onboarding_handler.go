package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	appMiddleware "github.com/sahyog-labs/disha/internal/api/middlewares"
	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
	"github.com/sahyog-labs/disha/internal/services"
)

type OnboardingHandler struct {
	dbclient core.DbClient
	plans    *services.PlanService
}

func NewOnboardingHandler(dbclient core.DbClient, plans *services.PlanService) *OnboardingHandler {
	return &OnboardingHandler{dbclient: dbclient, plans: plans}
}

type onboardingRequest struct {
	Name             string            `json:"name"`
	Age              int               `json:"age"`
	Gender           string            `json:"gender"`
	ClassCompleted   string            `json:"classCompleted"`
	Board            string            `json:"board"`
	Stream           string            `json:"stream"`
	Subjects         []string          `json:"subjects"`
	Location         models.Location   `json:"location"`
	Interests        []string          `json:"interests"`
	FutureGoal       string            `json:"futureGoal"`
	Skills           []string          `json:"skills"`
	Extracurriculars []string          `json:"extracurriculars"`
	ExamPreferences  []string          `json:"examPreferences"`
	DreamColleges    []string          `json:"dreamColleges"`
}

// Save upserts the onboarding profile, marks the user onboarded and triggers
// plan generation. The plan is best-effort; its failure never fails the save.
func (h *OnboardingHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if req.Name == "" {
		respondErr(w, http.StatusBadRequest, "Name required")
		return
	}

	classCompleted := req.ClassCompleted
	if classCompleted == "" {
		classCompleted = "12"
	}
	stream := req.Stream
	if stream == "" {
		stream = "Other"
	}

	ob := &models.Onboarding{
		ID:               uuid.NewString(),
		UserID:           userID,
		Name:             req.Name,
		Age:              req.Age,
		Gender:           req.Gender,
		ClassCompleted:   classCompleted,
		Board:            req.Board,
		Stream:           stream,
		Subjects:         req.Subjects,
		Location:         req.Location,
		Interests:        req.Interests,
		FutureGoal:       req.FutureGoal,
		Skills:           req.Skills,
		Extracurriculars: req.Extracurriculars,
		ExamPreferences:  req.ExamPreferences,
		DreamColleges:    req.DreamColleges,
	}

	saved, err := h.dbclient.UpsertOnboarding(r.Context(), ob)
	if err != nil {
		respondServerErr(w, "onboarding.save", err)
		return
	}
	if err := h.dbclient.MarkUserOnboarded(r.Context(), userID); err != nil {
		log.Printf("onboarding.save: mark onboarded: %v", err)
	}

	if err := h.plans.GeneratePlan(r.Context(), saved); err != nil {
		log.Printf("onboarding.save: %v", err)
	}

	respondOK(w, saved)
}

func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ob, err := h.dbclient.GetOnboardingByUser(r.Context(), userID)
	if err != nil {
		respondServerErr(w, "onboarding.get", err)
		return
	}
	if ob == nil {
		respondErr(w, http.StatusNotFound, "No onboarding data")
		return
	}
	respondOK(w, ob)
}
