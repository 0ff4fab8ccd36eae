package services

import (
	"context"
	"errors"
	"sync"

	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

// stubDB is an in-memory core.DbClient for service tests.
type stubDB struct {
	mu sync.Mutex

	users       map[string]*models.User
	onboardings map[string]*models.Onboarding
	mappings    map[string]*models.CareerMapping // key userID + "|" + course
	messages    []models.ChatMessage

	addMessageErr error
	recentErr     error
}

func newStubDB() *stubDB {
	return &stubDB{
		users:       map[string]*models.User{},
		onboardings: map[string]*models.Onboarding{},
		mappings:    map[string]*models.CareerMapping{},
	}
}

func (s *stubDB) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *stubDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *stubDB) MarkUserOnboarded(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.OnboardingCompleted = true
		return nil
	}
	return errors.New("user not found")
}

func (s *stubDB) UpsertOnboarding(_ context.Context, ob *models.Onboarding) (*models.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboardings[ob.UserID] = ob
	return ob, nil
}

func (s *stubDB) GetOnboardingByUser(_ context.Context, userID string) (*models.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboardings[userID], nil
}

func (s *stubDB) SaveOnboardingPlan(_ context.Context, userID string, streams, careers models.StringList, recs models.RecommendationList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ob, ok := s.onboardings[userID]
	if !ok {
		return errors.New("onboarding not found")
	}
	ob.SuggestedStreams = streams
	ob.SuggestedCareers = careers
	ob.CollegeRecommendations = recs
	return nil
}

func (s *stubDB) GetCareerMapping(_ context.Context, userID, course string) (*models.CareerMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mappings[userID+"|"+course], nil
}

func (s *stubDB) UpsertCareerMapping(_ context.Context, m *models.CareerMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[m.UserID+"|"+m.Course] = m
	return nil
}

func (s *stubDB) AddChatMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addMessageErr != nil {
		return s.addMessageErr
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *stubDB) ListChatMessages(_ context.Context, userID string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range s.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubDB) RecentChatMessages(_ context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	var out []models.ChatMessage
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if s.messages[i].UserID == userID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

func (s *stubDB) ListColleges(_ context.Context, _ models.CollegeFilter) ([]models.College, int, error) {
	return nil, 0, nil
}

func (s *stubDB) FindCollegesNear(_ context.Context, _, _, _ float64, _ []string, _ int) ([]models.College, error) {
	return nil, nil
}

func (s *stubDB) Close() error { return nil }

var _ core.DbClient = (*stubDB)(nil)

// stubLLM replays scripted responses and records the prompts it saw.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []llmCall
}

type llmCall struct {
	system string
	prompt string
	opts   core.GenOptions
}

func (l *stubLLM) Generate(_ context.Context, system, prompt string, opts core.GenOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := len(l.calls)
	l.calls = append(l.calls, llmCall{system: system, prompt: prompt, opts: opts})
	var err error
	if i < len(l.errs) {
		err = l.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(l.responses) {
		return l.responses[i], nil
	}
	return "", nil
}

var _ core.LLMProvider = (*stubLLM)(nil)
