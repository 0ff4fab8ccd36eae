package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sahyog-labs/disha/internal/config"
	"github.com/sahyog-labs/disha/internal/core"
	"github.com/sahyog-labs/disha/internal/models"
)

// haversineExpr computes great-circle distance in km between a row's lat/lon
// and the parameterized point. Same earth radius the geo filter has always used.
const haversineExpr = `6378.1 * acos(least(1.0, greatest(-1.0,
		cos(radians(%[1]s)) * cos(radians(lat)) * cos(radians(lon) - radians(%[2]s)) +
		sin(radians(%[1]s)) * sin(radians(lat)))))`

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: sqlDB}, nil
}

// NewDatabaseClientFromDB wraps an existing handle; used by tests.
func NewDatabaseClientFromDB(sqlDB *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: sqlDB}
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, name, email, password_hash, role, class_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()), COALESCE($8, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.ClassCompleted, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role, class_completed, onboarding_completed, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.ClassCompleted, &u.OnboardingCompleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role, class_completed, onboarding_completed, created_at, updated_at
		FROM users WHERE id = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.ClassCompleted, &u.OnboardingCompleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) MarkUserOnboarded(ctx context.Context, userID string) error {
	const q = `
		UPDATE users SET onboarding_completed = true, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// Onboarding

func (c *DatabaseClient) UpsertOnboarding(ctx context.Context, ob *models.Onboarding) (*models.Onboarding, error) {
	if ob == nil {
		return nil, errors.New("nil onboarding")
	}
	const q = `
		INSERT INTO onboardings
			(id, user_id, name, age, gender, class_completed, board, stream, subjects, location,
			 interests, future_goal, skills, extracurriculars, exam_preferences, dream_colleges,
			 created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			 $11, $12, $13, $14, $15, $16, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			class_completed = EXCLUDED.class_completed,
			board = EXCLUDED.board,
			stream = EXCLUDED.stream,
			subjects = EXCLUDED.subjects,
			location = EXCLUDED.location,
			interests = EXCLUDED.interests,
			future_goal = EXCLUDED.future_goal,
			skills = EXCLUDED.skills,
			extracurriculars = EXCLUDED.extracurriculars,
			exam_preferences = EXCLUDED.exam_preferences,
			dream_colleges = EXCLUDED.dream_colleges,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`
	err := c.db.QueryRowContext(ctx, q,
		ob.ID, ob.UserID, ob.Name, ob.Age, ob.Gender, ob.ClassCompleted, ob.Board, ob.Stream,
		ob.Subjects, ob.Location, ob.Interests, ob.FutureGoal, ob.Skills, ob.Extracurriculars,
		ob.ExamPreferences, ob.DreamColleges,
	).Scan(&ob.ID, &ob.CreatedAt, &ob.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ob, nil
}

func (c *DatabaseClient) GetOnboardingByUser(ctx context.Context, userID string) (*models.Onboarding, error) {
	const q = `
		SELECT id, user_id, name, age, gender, class_completed, board, stream, subjects, location,
		       interests, future_goal, skills, extracurriculars, exam_preferences, dream_colleges,
		       suggested_streams, suggested_careers, college_recommendations, created_at, updated_at
		FROM onboardings
		WHERE user_id = $1
	`
	var ob models.Onboarding
	err := c.db.QueryRowContext(ctx, q, userID).Scan(
		&ob.ID, &ob.UserID, &ob.Name, &ob.Age, &ob.Gender, &ob.ClassCompleted, &ob.Board, &ob.Stream,
		&ob.Subjects, &ob.Location, &ob.Interests, &ob.FutureGoal, &ob.Skills, &ob.Extracurriculars,
		&ob.ExamPreferences, &ob.DreamColleges, &ob.SuggestedStreams, &ob.SuggestedCareers,
		&ob.CollegeRecommendations, &ob.CreatedAt, &ob.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ob, nil
}

func (c *DatabaseClient) SaveOnboardingPlan(ctx context.Context, userID string, streams, careers models.StringList, recs models.RecommendationList) error {
	const q = `
		UPDATE onboardings
		SET suggested_streams = $2, suggested_careers = $3, college_recommendations = $4, updated_at = now()
		WHERE user_id = $1
	`
	res, err := c.db.ExecContext(ctx, q, userID, streams, careers, recs)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("onboarding not found for user: %s", userID)
	}
	return nil
}

// Career mappings

func (c *DatabaseClient) GetCareerMapping(ctx context.Context, userID, course string) (*models.CareerMapping, error) {
	const q = `
		SELECT id, user_id, course, generated_at, raw_text, structured
		FROM career_mappings
		WHERE user_id = $1 AND course = $2
	`
	var m models.CareerMapping
	err := c.db.QueryRowContext(ctx, q, userID, course).Scan(
		&m.ID, &m.UserID, &m.Course, &m.GeneratedAt, &m.RawText, &m.Structured,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertCareerMapping overwrites any prior row for the same (user, course).
// Concurrent regenerations race per row; the later write wins.
func (c *DatabaseClient) UpsertCareerMapping(ctx context.Context, m *models.CareerMapping) error {
	if m == nil {
		return errors.New("nil career mapping")
	}
	const q = `
		INSERT INTO career_mappings (id, user_id, course, generated_at, raw_text, structured)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, course) DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			raw_text = EXCLUDED.raw_text,
			structured = EXCLUDED.structured
	`
	_, err := c.db.ExecContext(ctx, q, m.ID, m.UserID, m.Course, m.GeneratedAt, m.RawText, m.Structured)
	return err
}

// Chat messages

func (c *DatabaseClient) AddChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil chat message")
	}
	const q = `
		INSERT INTO chat_messages (id, user_id, role, text, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q, msg.ID, msg.UserID, msg.Role, msg.Text, msg.CreatedAt)
	return err
}

func (c *DatabaseClient) ListChatMessages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, user_id, role, text, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatMessages(rows)
}

// RecentChatMessages returns the newest messages first.
func (c *DatabaseClient) RecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, user_id, role, text, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatMessages(rows)
}

func scanChatMessages(rows *sql.Rows) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Colleges

func (c *DatabaseClient) ListColleges(ctx context.Context, f models.CollegeFilter) ([]models.College, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
		}
		conds = append(conds, cond)
	}

	if f.Q != "" {
		add(fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", len(args)+1), f.Q)
	}
	if f.District != "" {
		add(fmt.Sprintf("district ILIKE $%d", len(args)+1), f.District)
	}
	if f.State != "" {
		add(fmt.Sprintf("state ILIKE $%d", len(args)+1), f.State)
	}
	if f.Stream != "" {
		add(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(courses) AS c(course) WHERE c.course ILIKE '%%' || $%d || '%%')",
			len(args)+1), strings.TrimSpace(f.Stream))
	}
	if f.HasGeo {
		latArg := fmt.Sprintf("$%d", len(args)+1)
		lonArg := fmt.Sprintf("$%d", len(args)+2)
		kmArg := fmt.Sprintf("$%d", len(args)+3)
		add(fmt.Sprintf(haversineExpr, latArg, lonArg)+" <= "+kmArg, f.Lat, f.Lon, f.WithinKm)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := c.db.QueryRowContext(ctx, "SELECT count(*) FROM colleges"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	q := `SELECT id, name, state, district, lat, lon, courses, facilities, created_at FROM colleges` +
		where +
		fmt.Sprintf(" ORDER BY name ASC OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := scanColleges(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// FindCollegesNear returns colleges within withinKm of the point offering any
// of the given courses, closest first.
func (c *DatabaseClient) FindCollegesNear(ctx context.Context, lat, lon, withinKm float64, courses []string, limit int) ([]models.College, error) {
	dist := fmt.Sprintf(haversineExpr, "$1", "$2")
	q := `
		SELECT id, name, state, district, lat, lon, courses, facilities, created_at
		FROM colleges
		WHERE ` + dist + ` <= $3
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(courses) AS c(course)
			WHERE c.course = ANY($4)
		  )
		ORDER BY ` + dist + ` ASC
		LIMIT $5
	`
	rows, err := c.db.QueryContext(ctx, q, lat, lon, withinKm, courses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanColleges(rows)
}

func scanColleges(rows *sql.Rows) ([]models.College, error) {
	var out []models.College
	for rows.Next() {
		var col models.College
		if err := rows.Scan(
			&col.ID, &col.Name, &col.State, &col.District, &col.Lat, &col.Lon,
			&col.Courses, &col.Facilities, &col.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

var _ core.DbClient = (*DatabaseClient)(nil)
