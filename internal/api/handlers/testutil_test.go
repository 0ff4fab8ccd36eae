package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/sahyog-labs/disha/internal/api/middlewares"
	"github.com/sahyog-labs/disha/internal/config"
	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		BcryptCost: bcrypt.MinCost,
	}
}

// fakeDB implements core.DbClient through overridable hooks. Methods without
// a hook return zero values.
type fakeDB struct {
	OnCreateUser          func(ctx context.Context, u *models.User) error
	OnGetUserByEmail      func(ctx context.Context, email string) (*models.User, error)
	OnGetUserByID         func(ctx context.Context, id string) (*models.User, error)
	OnMarkUserOnboarded   func(ctx context.Context, userID string) error
	OnUpsertOnboarding    func(ctx context.Context, ob *models.Onboarding) (*models.Onboarding, error)
	OnGetOnboardingByUser func(ctx context.Context, userID string) (*models.Onboarding, error)
	OnSaveOnboardingPlan  func(ctx context.Context, userID string, streams, careers models.StringList, recs models.RecommendationList) error
	OnGetCareerMapping    func(ctx context.Context, userID, course string) (*models.CareerMapping, error)
	OnUpsertCareerMapping func(ctx context.Context, m *models.CareerMapping) error
	OnAddChatMessage      func(ctx context.Context, msg *models.ChatMessage) error
	OnListChatMessages    func(ctx context.Context, userID string) ([]models.ChatMessage, error)
	OnRecentChatMessages  func(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
	OnListColleges        func(ctx context.Context, f models.CollegeFilter) ([]models.College, int, error)
	OnFindCollegesNear    func(ctx context.Context, lat, lon, withinKm float64, courses []string, limit int) ([]models.College, error)
}

func (f *fakeDB) CreateUser(ctx context.Context, u *models.User) error {
	if f.OnCreateUser != nil {
		return f.OnCreateUser(ctx, u)
	}
	return nil
}

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.OnGetUserByEmail != nil {
		return f.OnGetUserByEmail(ctx, email)
	}
	return nil, nil
}

func (f *fakeDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.OnGetUserByID != nil {
		return f.OnGetUserByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeDB) MarkUserOnboarded(ctx context.Context, userID string) error {
	if f.OnMarkUserOnboarded != nil {
		return f.OnMarkUserOnboarded(ctx, userID)
	}
	return nil
}

func (f *fakeDB) UpsertOnboarding(ctx context.Context, ob *models.Onboarding) (*models.Onboarding, error) {
	if f.OnUpsertOnboarding != nil {
		return f.OnUpsertOnboarding(ctx, ob)
	}
	return ob, nil
}

func (f *fakeDB) GetOnboardingByUser(ctx context.Context, userID string) (*models.Onboarding, error) {
	if f.OnGetOnboardingByUser != nil {
		return f.OnGetOnboardingByUser(ctx, userID)
	}
	return nil, nil
}

func (f *fakeDB) SaveOnboardingPlan(ctx context.Context, userID string, streams, careers models.StringList, recs models.RecommendationList) error {
	if f.OnSaveOnboardingPlan != nil {
		return f.OnSaveOnboardingPlan(ctx, userID, streams, careers, recs)
	}
	return nil
}

func (f *fakeDB) GetCareerMapping(ctx context.Context, userID, course string) (*models.CareerMapping, error) {
	if f.OnGetCareerMapping != nil {
		return f.OnGetCareerMapping(ctx, userID, course)
	}
	return nil, nil
}

func (f *fakeDB) UpsertCareerMapping(ctx context.Context, m *models.CareerMapping) error {
	if f.OnUpsertCareerMapping != nil {
		return f.OnUpsertCareerMapping(ctx, m)
	}
	return nil
}

func (f *fakeDB) AddChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if f.OnAddChatMessage != nil {
		return f.OnAddChatMessage(ctx, msg)
	}
	return nil
}

func (f *fakeDB) ListChatMessages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	if f.OnListChatMessages != nil {
		return f.OnListChatMessages(ctx, userID)
	}
	return nil, nil
}

func (f *fakeDB) RecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if f.OnRecentChatMessages != nil {
		return f.OnRecentChatMessages(ctx, userID, limit)
	}
	return nil, nil
}

func (f *fakeDB) ListColleges(ctx context.Context, filter models.CollegeFilter) ([]models.College, int, error) {
	if f.OnListColleges != nil {
		return f.OnListColleges(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeDB) FindCollegesNear(ctx context.Context, lat, lon, withinKm float64, courses []string, limit int) ([]models.College, error) {
	if f.OnFindCollegesNear != nil {
		return f.OnFindCollegesNear(ctx, lat, lon, withinKm, courses, limit)
	}
	return nil, nil
}

func (f *fakeDB) Close() error { return nil }

var _ core.DbClient = (*fakeDB)(nil)

// fakeLLM replays scripted responses.
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
}

func (l *fakeLLM) Generate(_ context.Context, _, _ string, _ core.GenOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.calls
	l.calls++
	if i < len(l.errs) && l.errs[i] != nil {
		return "", l.errs[i]
	}
	if i < len(l.responses) {
		return l.responses[i], nil
	}
	return "", nil
}

// authedRequest attaches an authenticated user id, as the JWT middleware
// would.
func authedRequest(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), appMiddleware.UserIDKey, userID)
	return r.WithContext(ctx)
}

func doRequest(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}
