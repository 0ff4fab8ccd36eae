package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

const planPromptTemplate = `
You are a personalized career and college guidance AI for students.
Use the following student data to provide detailed suggestions.

Student Data:
%s

Return ONLY a JSON object with this structure:

{
  "ranked_streams": [
    {"stream": "Science", "score": 0.95, "reason": "Matches interests and marks"}
  ],
  "suggested_subjects": [
    {"stream": "Science", "subjects": ["Physics", "Chemistry", "Maths"]}
  ],
  "suggested_courses": [
    {"stream": "Science", "courses": ["B.Sc", "B.Tech"], "reason": "High employability"}
  ],
  "career_paths": [
    {"stream": "Science", "careers": ["Research Scientist", "Software Engineer"]}
  ],
  "college_recommendations": [
    {"priority": "High", "college": "XYZ Institute", "reason": "Good match for student stream and location"}
  ],
  "scholarship_recommendations": [
    {"name": "Merit Scholarship", "amount": "50,000 INR per year", "eligibility": "Top 10%% marks", "reason": "Reward for academic excellence"}
  ]
}

Be concise, precise, and return valid JSON only (no backticks or extra text).
`

type generatedPlan struct {
	RankedStreams []struct {
		Stream string  `json:"stream"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"ranked_streams"`
	SuggestedCourses []struct {
		Stream  string   `json:"stream"`
		Courses []string `json:"courses"`
		Reason  string   `json:"reason"`
	} `json:"suggested_courses"`
	CareerPaths []struct {
		Stream  string   `json:"stream"`
		Careers []string `json:"careers"`
	} `json:"career_paths"`
	CollegeRecommendations []models.CollegeRecommendation `json:"college_recommendations"`
}

// PlanService derives the initial suggested streams, careers and college
// recommendations from a freshly submitted onboarding profile. Best-effort:
// callers log failures and keep the onboarding request successful.
type PlanService struct {
	db  core.DbClient
	llm core.LLMProvider
}

func NewPlanService(db core.DbClient, llm core.LLMProvider) *PlanService {
	return &PlanService{db: db, llm: llm}
}

// GeneratePlan asks the model for a guidance plan, persists it onto the
// onboarding row and mirrors it onto ob.
func (s *PlanService) GeneratePlan(ctx context.Context, ob *models.Onboarding) error {
	profileJSON, _ := json.MarshalIndent(planProfile(ob), "", "  ")
	prompt := fmt.Sprintf(planPromptTemplate, profileJSON)

	raw, err := s.llm.Generate(ctx, "", prompt, core.GenOptions{})
	if err != nil {
		return fmt.Errorf("plan generation: %w", err)
	}

	var plan generatedPlan
	if obj, ok := firstBracedObject(raw); ok {
		if err := json.Unmarshal([]byte(obj), &plan); err != nil {
			return fmt.Errorf("plan parse: %w", err)
		}
	} else {
		return fmt.Errorf("plan parse: no JSON object in model output")
	}

	streams := make(models.StringList, 0, len(plan.RankedStreams))
	for _, rs := range plan.RankedStreams {
		if rs.Stream != "" {
			streams = append(streams, rs.Stream)
		}
	}
	var careers models.StringList
	for _, cp := range plan.CareerPaths {
		careers = append(careers, cp.Careers...)
	}

	if err := s.db.SaveOnboardingPlan(ctx, ob.UserID, streams, careers, plan.CollegeRecommendations); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	ob.SuggestedStreams = streams
	ob.SuggestedCareers = careers
	ob.CollegeRecommendations = plan.CollegeRecommendations
	return nil
}

// planProfile strips credentials and derived data from the prompt payload.
func planProfile(ob *models.Onboarding) map[string]any {
	return map[string]any{
		"name":            ob.Name,
		"classCompleted":  ob.ClassCompleted,
		"stream":          ob.Stream,
		"subjects":        ob.Subjects,
		"interests":       ob.Interests,
		"skills":          ob.Skills,
		"futureGoal":      ob.FutureGoal,
		"location":        ob.Location,
		"examPreferences": ob.ExamPreferences,
	}
}
