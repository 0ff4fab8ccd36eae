package services

import "github.com/sahyog-labs/disha/internal/models"

// fallbackConfidence marks a mapping that came from the static table rather
// than the model.
const fallbackConfidence = 0.25

// FallbackMapping is the static per-course recommendation used when the model
// is unreachable or its output cannot be parsed.
type FallbackMapping struct {
	Industries       []string
	GovtExams        []string
	Jobs             []string
	HigherEducation  []string
	Entrepreneurship []string
}

// FallbackLibrary is an exhaustively-keyed course table with a generic
// default. Injected into the career service so tests can swap it out.
type FallbackLibrary struct {
	byCourse map[string]FallbackMapping
	generic  FallbackMapping
}

func NewFallbackLibrary(byCourse map[string]FallbackMapping, generic FallbackMapping) *FallbackLibrary {
	return &FallbackLibrary{byCourse: byCourse, generic: generic}
}

// DefaultFallbackLibrary covers the common Indian undergraduate courses.
func DefaultFallbackLibrary() *FallbackLibrary {
	return NewFallbackLibrary(map[string]FallbackMapping{
		"B.Sc": {
			Industries:       []string{"IT/Data", "Pharma", "Research", "Education"},
			GovtExams:        []string{"CSIR-NET", "State PSC"},
			Jobs:             []string{"Data Analyst", "Lab Technician", "Research Assistant"},
			HigherEducation:  []string{"M.Sc.", "MCA", "M.Tech", "PhD"},
			Entrepreneurship: []string{"Small-scale lab", "EdTech tutoring"},
		},
		"B.Com": {
			Industries:       []string{"Banking", "Accounting", "Finance", "Insurance"},
			GovtExams:        []string{"Bank PO", "SSC", "State PSC"},
			Jobs:             []string{"Accountant", "Financial Analyst", "Tax Consultant"},
			HigherEducation:  []string{"M.Com", "MBA", "CFA"},
			Entrepreneurship: []string{"Accounting firm", "Business services"},
		},
		"B.A": {
			Industries:       []string{"Public Sector", "Education", "Media"},
			GovtExams:        []string{"State PSC", "UPSC eligibility"},
			Jobs:             []string{"Content Writer", "Teacher", "Social Worker"},
			HigherEducation:  []string{"M.A", "Law (LLB)", "MBA (specialisations)"},
			Entrepreneurship: []string{"Content studio", "NGO / Social enterprise"},
		},
		"B.Tech": {
			Industries:       []string{"Software", "Manufacturing", "Core Engineering", "R&D"},
			GovtExams:        []string{"GATE", "PSU exams"},
			Jobs:             []string{"Software Engineer", "Design Engineer", "Systems Engineer"},
			HigherEducation:  []string{"M.Tech", "MBA", "MS Abroad"},
			Entrepreneurship: []string{"Product startup", "Hardware/IoT"},
		},
	}, FallbackMapping{
		Industries:       []string{"Private sector", "Public sector"},
		GovtExams:        []string{"State exams"},
		Jobs:             []string{"Graduate roles"},
		HigherEducation:  []string{"PG courses"},
		Entrepreneurship: []string{"Small business"},
	})
}

// Lookup returns the mapping for a known course, else the generic default.
func (l *FallbackLibrary) Lookup(course string) FallbackMapping {
	if m, ok := l.byCourse[course]; ok {
		return m
	}
	return l.generic
}

// Structured builds the degraded-quality recommendation for a course.
func (l *FallbackLibrary) Structured(course string) models.CareerStructured {
	m := l.Lookup(course)
	jobs := make([]models.JobSuggestion, 0, len(m.Jobs))
	for _, title := range m.Jobs {
		jobs = append(jobs, models.JobSuggestion{Title: title, Why: "Common job for this course"})
	}
	return models.CareerStructured{
		Summary:          "Fallback mapping provided (LLM failed).",
		Industries:       m.Industries,
		GovtExams:        m.GovtExams,
		Jobs:             jobs,
		HigherEducation:  m.HigherEducation,
		Entrepreneurship: m.Entrepreneurship,
		ConfidenceScore:  fallbackConfidence,
	}
}
