package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahyog-labs/disha/internal/models"
	"github.com/sahyog-labs/disha/internal/services"
)

const mappingJSON = `{
	"summary": "Strong fit for analytical students.",
	"industries": ["IT", "Research"],
	"govtExams": ["GATE"],
	"jobs": [{"title": "Engineer", "why": "Good with math"}],
	"higherEducation": ["M.Sc"],
	"entrepreneurship": ["Start a coaching centre"],
	"confidence_score": 0.9
}`

func careerTestDB() *fakeDB {
	var stored *models.CareerMapping
	db := &fakeDB{
		OnGetOnboardingByUser: func(_ context.Context, userID string) (*models.Onboarding, error) {
			if userID != "u1" {
				return nil, nil
			}
			return &models.Onboarding{ID: "ob-1", UserID: "u1", Name: "Asha", Stream: "Science"}, nil
		},
	}
	db.OnGetCareerMapping = func(_ context.Context, userID, course string) (*models.CareerMapping, error) {
		if stored != nil && stored.UserID == userID && stored.Course == course {
			return stored, nil
		}
		return nil, nil
	}
	db.OnUpsertCareerMapping = func(_ context.Context, m *models.CareerMapping) error {
		stored = m
		return nil
	}
	return db
}

func careerRouter(h *CareerHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/career-mapping/{course}", h.GetMapping)
	r.Post("/api/career-mapping/{course}/regenerate", h.Regenerate)
	return r
}

func TestCareerMappingCachedMeta(t *testing.T) {
	db := careerTestDB()
	llm := &fakeLLM{responses: []string{mappingJSON, mappingJSON}}
	h := NewCareerHandler(services.NewCareerService(db, llm, nil))
	router := careerRouter(h)

	get := func(path string) envelopeOut {
		req := authedRequest(httptest.NewRequest(http.MethodGet, path, nil), "u1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return decodeEnvelope(t, rec)
	}

	first := get("/api/career-mapping/B.Sc")
	assert.Equal(t, false, first.Meta["cached"])

	second := get("/api/career-mapping/B.Sc")
	assert.Equal(t, true, second.Meta["cached"])

	var mapping models.CareerMapping
	require.NoError(t, json.Unmarshal(second.Data, &mapping))
	assert.Equal(t, "Strong fit for analytical students.", mapping.Structured.Summary)
	assert.Equal(t, 1, llm.calls)
}

func TestCareerMappingRegenerateBypassesCache(t *testing.T) {
	db := careerTestDB()
	llm := &fakeLLM{responses: []string{mappingJSON, mappingJSON}}
	h := NewCareerHandler(services.NewCareerService(db, llm, nil))
	router := careerRouter(h)

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/career-mapping/B.Sc", nil), "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = authedRequest(httptest.NewRequest(http.MethodPost, "/api/career-mapping/B.Sc/regenerate", nil), "u1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, false, decodeEnvelope(t, rec).Meta["cached"])
	assert.Equal(t, 2, llm.calls)
}

func TestCareerMappingNoOnboarding(t *testing.T) {
	db := careerTestDB()
	h := NewCareerHandler(services.NewCareerService(db, &fakeLLM{}, nil))
	router := careerRouter(h)

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/career-mapping/B.Sc", nil), "u2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Onboarding not found", decodeEnvelope(t, rec).Msg)
}

func TestCareerMappingCourseRequired(t *testing.T) {
	h := NewCareerHandler(services.NewCareerService(&fakeDB{}, &fakeLLM{}, nil))

	// no route parameter resolves to an empty course
	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/career-mapping/", nil), "u1")
	rec := doRequest(h.GetMapping, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Course required", decodeEnvelope(t, rec).Msg)
}
