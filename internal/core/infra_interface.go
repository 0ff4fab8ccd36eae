package core

import (
	"context"

	"github.com/sahyog-labs/disha/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	MarkUserOnboarded(ctx context.Context, userID string) error

	UpsertOnboarding(ctx context.Context, ob *models.Onboarding) (*models.Onboarding, error)
	GetOnboardingByUser(ctx context.Context, userID string) (*models.Onboarding, error)
	SaveOnboardingPlan(ctx context.Context, userID string, streams, careers models.StringList, recs models.RecommendationList) error

	GetCareerMapping(ctx context.Context, userID, course string) (*models.CareerMapping, error)
	UpsertCareerMapping(ctx context.Context, m *models.CareerMapping) error

	AddChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, userID string) ([]models.ChatMessage, error)
	RecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)

	ListColleges(ctx context.Context, f models.CollegeFilter) ([]models.College, int, error)
	FindCollegesNear(ctx context.Context, lat, lon, withinKm float64, courses []string, limit int) ([]models.College, error)

	Close() error
}
