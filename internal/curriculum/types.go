// Package curriculum provides the typed client for the upstream curriculum
// API and the normalization of its two payload generations into one
// render-ready view model.
package curriculum

// FormData holds the user-submitted generation parameters. It is embedded
// verbatim in the saved curriculum by the backend and never mutated here.
type FormData struct {
	LearningGoal       string   `json:"learning_goal"`
	CurrentLevel       string   `json:"current_level"`
	FocusAreas         []string `json:"focus_areas"`
	PriorKnowledge     string   `json:"prior_knowledge"`
	TimeCommitment     string   `json:"time_commitment"`
	LearningObjectives string   `json:"learning_objectives"`
	LearningStyle      string   `json:"learning_style"`
	Interests          string   `json:"interests,omitempty"`
	ExamDate           string   `json:"exam_date,omitempty"`
}

// QuizQuestion is a single question in a course quiz.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty,omitempty"`
	QuestionType  string   `json:"question_type,omitempty"`
}

// ValidationStatus is the backend's verdict on whether a course's topic is
// covered by platform content. Unset means a legacy payload that predates
// validation.
type ValidationStatus string

const (
	ValidationAvailable        ValidationStatus = "available"
	ValidationAlternative      ValidationStatus = "alternative"
	ValidationExternalFallback ValidationStatus = "external_platform_fallback"
)

// ExternalLink is a curated or generated off-platform learning resource.
type ExternalLink struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// MatchingCriteria carries the metadata the backend attaches to a course
// for matching it against platform content.
type MatchingCriteria struct {
	TopicSlug        string           `json:"topic_slug"`
	SubtopicSlugs    []string         `json:"subtopic_slugs,omitempty"`
	DifficultyLevel  string           `json:"difficulty_level,omitempty"`
	Keywords         []string         `json:"keywords,omitempty"`
	Domain           string           `json:"domain,omitempty"`
	ExamContext      string           `json:"exam_context,omitempty"`
	AlternativeNames []string         `json:"alternative_names,omitempty"`
	ValidationStatus ValidationStatus `json:"validation_status,omitempty"`
	MatchedContentID string           `json:"matched_content_id,omitempty"`
	ContentURL       string           `json:"content_url,omitempty"`
	ExternalLinks    []ExternalLink   `json:"external_links,omitempty"`
}

// PracticeProblems describes the recommended practice load for a course.
type PracticeProblems struct {
	RecommendedCount       int            `json:"recommended_count"`
	DifficultyDistribution map[string]int `json:"difficulty_distribution,omitempty"`
	ProblemTypes           []string       `json:"problem_types,omitempty"`
}

// Course is a single learning unit within a tier. Numeric and prerequisite
// fields exist under both the legacy and current wire names; use the
// accessor methods rather than the fields so either generation reads the
// same.
type Course struct {
	Position            int               `json:"position"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	Topics              []string          `json:"topics,omitempty"`
	VideoCount          *int              `json:"video_count,omitempty"` // legacy
	ExpectedVideoCount  *int              `json:"expected_video_count,omitempty"`
	DurationHours       *float64          `json:"duration_hours,omitempty"` // legacy
	EstimatedHours      *float64          `json:"estimated_hours,omitempty"`
	Prerequisites       []string          `json:"prerequisites,omitempty"` // legacy
	PrerequisiteCourses []string          `json:"prerequisite_courses,omitempty"`
	LearningOutcomes    []string          `json:"learning_outcomes,omitempty"`
	Quiz                []QuizQuestion    `json:"quiz,omitempty"`
	HandsOnProject      string            `json:"hands_on_project,omitempty"`
	MatchingCriteria    *MatchingCriteria `json:"matching_criteria,omitempty"`
	ExamRelevance       string            `json:"exam_relevance,omitempty"`
	Weightage           string            `json:"weightage,omitempty"`
	PracticeProblems    *PracticeProblems `json:"practice_problems,omitempty"`
}

// Videos returns the video count under either wire name, 0 when absent.
func (c Course) Videos() int {
	if c.ExpectedVideoCount != nil {
		return *c.ExpectedVideoCount
	}
	if c.VideoCount != nil {
		return *c.VideoCount
	}
	return 0
}

// Hours returns the estimated hours under either wire name, 0 when absent.
func (c Course) Hours() float64 {
	if c.EstimatedHours != nil {
		return *c.EstimatedHours
	}
	if c.DurationHours != nil {
		return *c.DurationHours
	}
	return 0
}

// PrerequisiteList returns prerequisites under either wire name, never nil.
func (c Course) PrerequisiteList() []string {
	if c.PrerequisiteCourses != nil {
		return c.PrerequisiteCourses
	}
	if c.Prerequisites != nil {
		return c.Prerequisites
	}
	return []string{}
}

// LearningTier is one difficulty tier of a curriculum.
type LearningTier struct {
	TierDescription     string   `json:"tier_description"`
	TotalVideos         *int     `json:"total_videos,omitempty"` // legacy
	TotalEstimatedHours float64  `json:"total_estimated_hours"`
	TierRelevance       string   `json:"tier_relevance,omitempty"`
	Courses             []Course `json:"courses,omitempty"`
}

// ProgressMilestone marks a checkpoint on the learning path.
type ProgressMilestone struct {
	MilestoneName    string   `json:"milestone_name"`
	Tier             string   `json:"tier"`
	Percentage       float64  `json:"percentage"`
	CoursesCompleted *int     `json:"courses_completed,omitempty"`
	VideosCompleted  *int     `json:"videos_completed,omitempty"` // legacy
	SkillsUnlocked   []string `json:"skills_unlocked,omitempty"`
	NextStep         string   `json:"next_step,omitempty"`
	ExamReadiness    string   `json:"exam_readiness,omitempty"`
}

// StudentProfile is the AI's analysis of the student. The backend has
// emitted it under two generations of field names (student_analysis vs
// student_profile); both sets are declared here and reconciled by
// Normalize.
type StudentProfile struct {
	ProfileSummary           string  `json:"profile_summary,omitempty"` // legacy
	Summary                  string  `json:"summary,omitempty"`
	StartingTier             string  `json:"starting_tier,omitempty"` // legacy
	RecommendedStartTier     string  `json:"recommended_start_tier,omitempty"`
	Reasoning                string  `json:"reasoning,omitempty"` // legacy
	EstimatedCompletionWeeks int     `json:"estimated_completion_weeks,omitempty"` // legacy
	EstimatedWeeks           int     `json:"estimated_weeks,omitempty"`
	WeeklyHoursNeeded        float64 `json:"weekly_hours_needed,omitempty"` // legacy
	WeeklyHours              float64 `json:"weekly_hours,omitempty"`
	SpecialNotes             string  `json:"special_notes,omitempty"`
}

// Personalization describes how the path was adapted to the student.
type Personalization struct {
	SkippedContent           []string `json:"skipped_content,omitempty"`
	EmphasizedAreas          []string `json:"emphasized_areas,omitempty"`
	RecommendedPace          string   `json:"recommended_pace,omitempty"`
	LearningStyleAdaptations string   `json:"learning_style_adaptations,omitempty"`
}

// FinalProject is the capstone project of a curriculum.
type FinalProject struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	SkillsDemonstrated []string `json:"skills_demonstrated,omitempty"`
	EstimatedHours     float64  `json:"estimated_hours"`
	Deliverables       []string `json:"deliverables,omitempty"`
}

// CareerOutcomes lists what completing the path unlocks.
type CareerOutcomes struct {
	JobTitles         []string `json:"job_titles,omitempty"`
	PortfolioPieces   []string `json:"portfolio_pieces,omitempty"`
	NextLearningPaths []string `json:"next_learning_paths,omitempty"`
}

// TopicPriority ranks a topic for exam preparation.
type TopicPriority struct {
	Topic            string  `json:"topic"`
	Importance       string  `json:"importance"`
	RecommendedHours float64 `json:"recommended_hours"`
}

// ExamStrategy is the exam preparation plan attached to exam-driven goals.
type ExamStrategy struct {
	StudySchedule       map[string]any  `json:"study_schedule,omitempty"`
	TopicPrioritization []TopicPriority `json:"topic_prioritization,omitempty"`
	MockTestSchedule    string          `json:"mock_test_schedule,omitempty"`
}

// examStrategyEnvelope is the conditional wrapper the backend emits.
type examStrategyEnvelope struct {
	IfExamPrep *ExamStrategy `json:"if_exam_prep,omitempty"`
}

// ResourceRecommendation points at off-platform material for a topic.
type ResourceRecommendation struct {
	Topic                string   `json:"topic"`
	Difficulty           string   `json:"difficulty,omitempty"`
	RecommendedPlatforms []string `json:"recommended_platforms,omitempty"`
	SearchQuery          string   `json:"search_query,omitempty"`
	YoutubeChannels      []string `json:"youtube_channels,omitempty"`
	Books                []string `json:"books,omitempty"`
	Websites             []string `json:"websites,omitempty"`
}

// resourceRecommendationsEnvelope is the conditional wrapper the backend emits.
type resourceRecommendationsEnvelope struct {
	IfNoInternalVideos []ResourceRecommendation `json:"if_no_internal_videos,omitempty"`
}

// CompletionTargets gives completion criteria per tier.
type CompletionTargets struct {
	BeginnerCompletion     string `json:"beginner_completion,omitempty"`
	IntermediateCompletion string `json:"intermediate_completion,omitempty"`
	AdvancedCompletion     string `json:"advanced_completion,omitempty"`
}

// SuccessMetrics defines what "done" means for skill and exam goals.
type SuccessMetrics struct {
	ForSkills *CompletionTargets `json:"for_skills,omitempty"`
	ForExams  *CompletionTargets `json:"for_exams,omitempty"`
}

// GoalAnalysis is the backend's breakdown of the stated learning goal.
type GoalAnalysis struct {
	DetectedDomain  string   `json:"detected_domain,omitempty"`
	PrimaryTopic    string   `json:"primary_topic,omitempty"`
	Subtopics       []string `json:"subtopics,omitempty"`
	ExamSpecific    bool     `json:"exam_specific,omitempty"`
	ExamName        string   `json:"exam_name,omitempty"`
	ComplexityLevel string   `json:"complexity_level,omitempty"`
}

// Data is the raw AI-generated curriculum payload. Exactly one of the two
// shape generations is populated per payload: the legacy pair
// (student_analysis, learning_path) or the current pair (student_profile,
// curriculum). Normalize reconciles whichever is present.
type Data struct {
	StudentAnalysis *StudentProfile          `json:"student_analysis,omitempty"` // legacy
	StudentProfile  *StudentProfile          `json:"student_profile,omitempty"`
	LearningPath    map[string]*LearningTier `json:"learning_path,omitempty"` // legacy
	Curriculum      map[string]*LearningTier `json:"curriculum,omitempty"`

	ProgressMilestones []ProgressMilestone `json:"progress_milestones,omitempty"`
	Personalization    *Personalization    `json:"personalization,omitempty"` // legacy
	FinalProject       *FinalProject       `json:"final_project,omitempty"`
	CareerOutcomes     *CareerOutcomes     `json:"career_outcomes,omitempty"`

	LearningGoalAnalysis    *GoalAnalysis                    `json:"learning_goal_analysis,omitempty"`
	ExamStrategy            *examStrategyEnvelope            `json:"exam_strategy,omitempty"`
	ResourceRecommendations *resourceRecommendationsEnvelope `json:"resource_recommendations,omitempty"`
	SuccessMetrics          *SuccessMetrics                  `json:"success_metrics,omitempty"`
}

// Saved is a curriculum persisted by the backend. The client only ever
// reads and caches these; it never constructs one.
type Saved struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	FormData   FormData       `json:"formData"`
	Curriculum *Data          `json:"curriculum"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
	Progress   map[string]any `json:"progress,omitempty"`
}

// GenerateResult is the uniform outcome of a generation attempt. Failure
// reasons are carried in Message/Error rather than a Go error so callers
// branch once on Success.
type GenerateResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Curriculum *Saved `json:"curriculum,omitempty"`
	Error      string `json:"error,omitempty"`
}
