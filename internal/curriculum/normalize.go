package curriculum

import "errors"

// ErrCorrupted reports a payload that is present but missing its required
// nested structure. The HTTP layer maps it to a distinct "corrupted data"
// terminal state instead of a partial render.
var ErrCorrupted = errors.New("curriculum data is missing or corrupted")

// Canonical tier names, in rendering order.
const (
	TierBeginner     = "beginner"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
)

// TierOrder is the rendering order of tiers.
var TierOrder = []string{TierBeginner, TierIntermediate, TierAdvanced}

// Defaults applied when neither payload generation carries a profile field.
const (
	defaultProfileSummary = "Standard Learning Path"
	defaultStartingTier   = "Beginner"
	defaultWeeks          = 4
)

// Profile is the canonical student profile reconciled from either payload
// generation.
type Profile struct {
	Summary      string  `json:"summary"`
	StartingTier string  `json:"starting_tier"`
	WeeklyHours  float64 `json:"weekly_hours"`
	Weeks        int     `json:"weeks"`
}

// View is the render-ready curriculum model. Optional sections are nil
// when the payload omitted them; collections are never nil. A tier absent
// from the payload is absent from Tiers, not an empty entry.
type View struct {
	Profile    Profile                 `json:"profile"`
	Tiers      map[string]LearningTier `json:"tiers"`
	Milestones []ProgressMilestone     `json:"milestones"`

	Personalization *Personalization `json:"personalization,omitempty"`
	FinalProject    *FinalProject    `json:"final_project,omitempty"`
	CareerOutcomes  *CareerOutcomes  `json:"career_outcomes,omitempty"`

	GoalAnalysis            *GoalAnalysis            `json:"goal_analysis,omitempty"`
	ExamStrategy            *ExamStrategy            `json:"exam_strategy,omitempty"`
	ResourceRecommendations []ResourceRecommendation `json:"resource_recommendations"`
	SuccessMetrics          *SuccessMetrics          `json:"success_metrics,omitempty"`
}

// Tier returns the named tier and whether the payload carried it.
func (v *View) Tier(name string) (LearningTier, bool) {
	t, ok := v.Tiers[name]
	return t, ok
}

// HasExamPrep reports whether the curriculum targets an exam.
func (v *View) HasExamPrep() bool {
	return v.ExamStrategy != nil
}

// Normalize reconciles a raw payload of either generation into a View.
// Every field is independently defaulted: a missing numeric becomes 0, a
// missing collection becomes empty, a missing tier stays absent. Only a
// nil payload is an error (ErrCorrupted); partial payloads always
// normalize.
func Normalize(d *Data) (*View, error) {
	if d == nil {
		return nil, ErrCorrupted
	}

	legacy := d.StudentAnalysis
	if legacy == nil {
		legacy = &StudentProfile{}
	}
	current := d.StudentProfile
	if current == nil {
		current = &StudentProfile{}
	}

	v := &View{
		Profile: Profile{
			Summary:      firstString(legacy.ProfileSummary, current.Summary, defaultProfileSummary),
			StartingTier: firstString(legacy.StartingTier, current.RecommendedStartTier, defaultStartingTier),
			WeeklyHours:  firstFloat(legacy.WeeklyHoursNeeded, current.WeeklyHours, 0),
			Weeks:        firstInt(legacy.EstimatedCompletionWeeks, current.EstimatedWeeks, defaultWeeks),
		},
		Tiers:                   map[string]LearningTier{},
		Milestones:              d.ProgressMilestones,
		Personalization:         d.Personalization,
		FinalProject:            d.FinalProject,
		CareerOutcomes:          d.CareerOutcomes,
		GoalAnalysis:            d.LearningGoalAnalysis,
		ResourceRecommendations: []ResourceRecommendation{},
		SuccessMetrics:          d.SuccessMetrics,
	}
	if v.Milestones == nil {
		v.Milestones = []ProgressMilestone{}
	}

	src := d.LearningPath
	if len(src) == 0 {
		src = d.Curriculum
	}
	for name, tier := range src {
		if tier == nil {
			continue
		}
		v.Tiers[name] = normalizeTier(*tier)
	}

	if d.ExamStrategy != nil {
		v.ExamStrategy = d.ExamStrategy.IfExamPrep
	}
	if d.ResourceRecommendations != nil && d.ResourceRecommendations.IfNoInternalVideos != nil {
		v.ResourceRecommendations = d.ResourceRecommendations.IfNoInternalVideos
	}

	return v, nil
}

// normalizeTier deep-copies a tier with all course collections non-nil so
// rendering and serialization never see null where a list belongs.
func normalizeTier(t LearningTier) LearningTier {
	courses := make([]Course, len(t.Courses))
	for i, c := range t.Courses {
		if c.Topics == nil {
			c.Topics = []string{}
		}
		if c.LearningOutcomes == nil {
			c.LearningOutcomes = []string{}
		}
		if c.Quiz == nil {
			c.Quiz = []QuizQuestion{}
		}
		courses[i] = c
	}
	t.Courses = courses
	return t
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstInt(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
