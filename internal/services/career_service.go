package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

// ErrOnboardingNotFound means the user has no onboarding profile; the mapping
// cannot be generated without one.
var ErrOnboardingNotFound = errors.New("onboarding not found")

const careerSystemPrompt = `
You are an expert Indian career counselor. Return only valid JSON (no explanation).
Schema:
{
 "summary": "<short 1-2 sentence summary>",
 "industries": ["..."],
 "govtExams": ["..."],
 "jobs": [{"title":"...","why":"..."}],
 "higherEducation": ["..."],
 "entrepreneurship": ["..."],
 "confidence_score": 0.0-1.0
}
Reasons should be <= 20 words each. Prioritize government colleges and local options when relevant.
`

// mappingProfile is the profile subset sent to the model. Personal fields
// outside this set stay out of the prompt.
type mappingProfile struct {
	ClassCompleted  string          `json:"classCompleted"`
	Stream          string          `json:"stream"`
	Subjects        []string        `json:"subjects"`
	Interests       []string        `json:"interests"`
	Skills          []string        `json:"skills"`
	FutureGoal      string          `json:"futureGoal"`
	Location        models.Location `json:"location"`
	ExamPreferences []string        `json:"examPreferences"`
}

// CareerResult pairs a mapping with its cached-or-fresh tag.
type CareerResult struct {
	Mapping *models.CareerMapping
	Cached  bool
}

// CareerService is a read-through cache over the generative model, keyed by
// (user, course). Concurrent misses for the same key may both call the model;
// the later row write wins.
type CareerService struct {
	db       core.DbClient
	llm      core.LLMProvider
	fallback *FallbackLibrary
}

func NewCareerService(db core.DbClient, llm core.LLMProvider, fallback *FallbackLibrary) *CareerService {
	if fallback == nil {
		fallback = DefaultFallbackLibrary()
	}
	return &CareerService{db: db, llm: llm, fallback: fallback}
}

// GetOrCreate returns the stored mapping for (user, course), generating and
// persisting a fresh one on miss or when forceRefresh is set.
func (s *CareerService) GetOrCreate(ctx context.Context, userID, course string, forceRefresh bool) (*CareerResult, error) {
	ob, err := s.db.GetOnboardingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load onboarding: %w", err)
	}
	if ob == nil {
		return nil, ErrOnboardingNotFound
	}

	if !forceRefresh {
		existing, err := s.db.GetCareerMapping(ctx, userID, course)
		if err != nil {
			return nil, fmt.Errorf("load mapping: %w", err)
		}
		if existing != nil {
			return &CareerResult{Mapping: existing, Cached: true}, nil
		}
	}

	profile := mappingProfile{
		ClassCompleted:  ob.ClassCompleted,
		Stream:          ob.Stream,
		Subjects:        ob.Subjects,
		Interests:       ob.Interests,
		Skills:          ob.Skills,
		FutureGoal:      ob.FutureGoal,
		Location:        ob.Location,
		ExamPreferences: ob.ExamPreferences,
	}

	rawText, structured := s.generate(ctx, profile, course)

	mapping := &models.CareerMapping{
		ID:          uuid.NewString(),
		UserID:      userID,
		Course:      course,
		GeneratedAt: time.Now().UTC(),
		RawText:     rawText,
		Structured:  structured,
	}
	if err := s.db.UpsertCareerMapping(ctx, mapping); err != nil {
		return nil, fmt.Errorf("save mapping: %w", err)
	}
	return &CareerResult{Mapping: mapping, Cached: false}, nil
}

// generate calls the model with one stricter retry on parse failure, then
// falls back to the static table. It always yields a valid structured object.
func (s *CareerService) generate(ctx context.Context, profile mappingProfile, course string) (string, models.CareerStructured) {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")
	userPrompt := fmt.Sprintf("Student profile: %s\nCourse to map: %q\nPlease produce JSON per schema.", profileJSON, course)

	rawText, err := s.llm.Generate(ctx, careerSystemPrompt, userPrompt, core.GenOptions{
		Temperature:     core.Temp(0.2),
		MaxOutputTokens: 700,
	})
	if err != nil {
		log.Printf("career mapping: LLM call failed: %v", err)
	} else if parsed, ok := parseStructured(rawText); ok {
		return rawText, *parsed
	} else {
		compact, _ := json.Marshal(profile)
		retryPrompt := fmt.Sprintf(
			"Previous response wasn't valid JSON. Return ONLY valid JSON following the schema exactly. Student profile: %s Course: %s",
			compact, course)
		retryText, retryErr := s.llm.Generate(ctx, careerSystemPrompt, retryPrompt, core.GenOptions{
			Temperature:     core.Temp(0.0),
			MaxOutputTokens: 700,
		})
		if retryErr != nil {
			log.Printf("career mapping: LLM retry failed: %v", retryErr)
		} else {
			rawText = retryText
			if parsed, ok := parseStructured(retryText); ok {
				return rawText, *parsed
			}
		}
	}

	structured := s.fallback.Structured(course)
	if rawText == "" {
		b, _ := json.Marshal(structured)
		rawText = string(b)
	}
	return rawText, structured
}
