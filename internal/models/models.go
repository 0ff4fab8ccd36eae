package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a []string stored as a jsonb column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		s, ok := src.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into StringList", src)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}

// User represents an authenticated user of the system.
type User struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Email               string    `db:"email" json:"email"`
	PasswordHash        string    `db:"password_hash" json:"-"`
	Role                string    `db:"role" json:"role"` // student | admin | counselor
	ClassCompleted      string    `db:"class_completed" json:"classCompleted"`
	OnboardingCompleted bool      `db:"onboarding_completed" json:"onboardingCompleted"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// Location is the coarse home location captured at onboarding.
type Location struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

func (loc Location) Value() (driver.Value, error) { return json.Marshal(loc) }

func (loc *Location) Scan(src any) error {
	if src == nil {
		*loc = Location{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Location", src)
	}
	return json.Unmarshal(b, loc)
}

// CollegeRecommendation is one AI-suggested college on the onboarding plan.
type CollegeRecommendation struct {
	Priority string `json:"priority"`
	College  string `json:"college"`
	Reason   string `json:"reason"`
}

// RecommendationList is a []CollegeRecommendation stored as jsonb.
type RecommendationList []CollegeRecommendation

func (r RecommendationList) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

func (r *RecommendationList) Scan(src any) error {
	if src == nil {
		*r = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into RecommendationList", src)
	}
	return json.Unmarshal(b, r)
}

// Onboarding holds one user's questionnaire answers plus the AI-derived plan.
// Exactly one row per user; submissions upsert.
type Onboarding struct {
	ID               string     `db:"id" json:"id"`
	UserID           string     `db:"user_id" json:"userId"`
	Name             string     `db:"name" json:"name"`
	Age              int        `db:"age" json:"age,omitempty"`
	Gender           string     `db:"gender" json:"gender,omitempty"`
	ClassCompleted   string     `db:"class_completed" json:"classCompleted"`
	Board            string     `db:"board" json:"board,omitempty"`
	Stream           string     `db:"stream" json:"stream"`
	Subjects         StringList `db:"subjects" json:"subjects"`
	Location         Location   `db:"location" json:"location"`
	Interests        StringList `db:"interests" json:"interests"`
	FutureGoal       string     `db:"future_goal" json:"futureGoal,omitempty"`
	Skills           StringList `db:"skills" json:"skills"`
	Extracurriculars StringList `db:"extracurriculars" json:"extracurriculars,omitempty"`
	ExamPreferences  StringList `db:"exam_preferences" json:"examPreferences"`
	DreamColleges    StringList `db:"dream_colleges" json:"dreamColleges,omitempty"`

	// Populated by the plan generator after submission.
	SuggestedStreams       StringList         `db:"suggested_streams" json:"suggestedStreams,omitempty"`
	SuggestedCareers       StringList         `db:"suggested_careers" json:"suggestedCareers,omitempty"`
	CollegeRecommendations RecommendationList `db:"college_recommendations" json:"collegeRecommendations,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// JobSuggestion is one job on a career mapping. The model sometimes returns
// jobs as bare strings; those decode to a title with an empty rationale.
type JobSuggestion struct {
	Title string `json:"title"`
	Why   string `json:"why"`
}

func (j *JobSuggestion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		j.Title = s
		j.Why = ""
		return nil
	}
	type plain JobSuggestion
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*j = JobSuggestion(p)
	return nil
}

// CareerStructured is the normalized career-mapping result.
type CareerStructured struct {
	Summary          string          `json:"summary"`
	Industries       []string        `json:"industries"`
	GovtExams        []string        `json:"govtExams"`
	Jobs             []JobSuggestion `json:"jobs"`
	HigherEducation  []string        `json:"higherEducation"`
	Entrepreneurship []string        `json:"entrepreneurship"`
	ConfidenceScore  float64         `json:"confidence_score"`
}

func (c CareerStructured) Value() (driver.Value, error) { return json.Marshal(c) }

func (c *CareerStructured) Scan(src any) error {
	if src == nil {
		*c = CareerStructured{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into CareerStructured", src)
	}
	return json.Unmarshal(b, c)
}

// CareerMapping is a cached, course-keyed recommendation for one user.
// At most one row exists per (user, course); regeneration overwrites it.
type CareerMapping struct {
	ID          string           `db:"id" json:"-"`
	UserID      string           `db:"user_id" json:"-"`
	Course      string           `db:"course" json:"course"`
	GeneratedAt time.Time        `db:"generated_at" json:"generatedAt"`
	RawText     string           `db:"raw_text" json:"rawText"`
	Structured  CareerStructured `db:"structured" json:"structured"`
}

// ChatMessage is one turn of the assistant conversation log.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Role      string    `db:"role" json:"role"` // user | assistant | system
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// FacilityMap marks which facilities a college offers, stored as jsonb.
type FacilityMap map[string]bool

func (f FacilityMap) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

func (f *FacilityMap) Scan(src any) error {
	if src == nil {
		*f = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into FacilityMap", src)
	}
	return json.Unmarshal(b, f)
}

// College is one entry of the geo-filterable college catalog.
type College struct {
	ID         string      `db:"id" json:"id"`
	Name       string      `db:"name" json:"name"`
	State      string      `db:"state" json:"state"`
	District   string      `db:"district" json:"district"`
	Lat        float64     `db:"lat" json:"lat"`
	Lon        float64     `db:"lon" json:"lon"`
	Courses    StringList  `db:"courses" json:"courses"`
	Facilities FacilityMap `db:"facilities" json:"facilities,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}

// CollegeFilter collects the query parameters for the college listing.
// Geo filtering applies only when HasGeo is set.
type CollegeFilter struct {
	Q        string
	State    string
	District string
	Stream   string

	HasGeo   bool
	Lat      float64
	Lon      float64
	WithinKm float64

	Page  int
	Limit int
}
