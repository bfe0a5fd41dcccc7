// Package models holds the domain types shared by the coaching services,
// the persistence layer, and the HTTP API.
package models

import "time"

// User is a coaching profile. Identity and authentication live elsewhere;
// ID is the caller-supplied identifier.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Industry   string    `json:"industry"`
	Experience int       `json:"experience"`
	Bio        string    `json:"bio"`
	Skills     []string  `json:"skills"`
	ResumeText string    `json:"resumeText,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// JobTarget describes the position a cover letter is written for
type JobTarget struct {
	JobTitle       string `json:"jobTitle" binding:"required"`
	CompanyName    string `json:"companyName" binding:"required"`
	JobDescription string `json:"jobDescription"`
}

// CoverLetter is a generated, user-editable cover letter in markdown
type CoverLetter struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"userId" db:"user_id"`
	Content        string    `json:"content" db:"content"`
	JobDescription string    `json:"jobDescription" db:"job_description"`
	CompanyName    string    `json:"companyName" db:"company_name"`
	JobTitle       string    `json:"jobTitle" db:"job_title"`
	Status         string    `json:"status" db:"status"`
	Source         string    `json:"source" db:"source"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// QuizQuestion is one multiple-choice question
type QuizQuestion struct {
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string   `json:"explanation" yaml:"explanation"`
}

// Quiz is the structured payload of a quiz generation
type Quiz struct {
	Questions []QuizQuestion `json:"questions" yaml:"questions"`
}

// JobQuestion is a targeted interview question with coaching notes
type JobQuestion struct {
	Question        string   `json:"question" yaml:"question"`
	Type            string   `json:"type" yaml:"type"`
	Context         string   `json:"context" yaml:"context"`
	SuggestedAnswer string   `json:"suggestedAnswer" yaml:"suggestedAnswer"`
	Tips            []string `json:"tips" yaml:"tips"`
}

// JobQuestionSet is the structured payload of a job-question generation
type JobQuestionSet struct {
	Questions []JobQuestion `json:"questions" yaml:"questions"`
}

// QuestionResult records one answered quiz question
type QuestionResult struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	UserAnswer  string `json:"userAnswer"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

// Assessment is a scored quiz attempt
type Assessment struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	QuizScore      float64          `json:"quizScore"`
	Questions      []QuestionResult `json:"questions"`
	Category       string           `json:"category"`
	ImprovementTip string           `json:"improvementTip,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// SalaryRange is the pay band of one role
type SalaryRange struct {
	Role     string  `json:"role" yaml:"role"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Median   float64 `json:"median" yaml:"median"`
	Location string  `json:"location" yaml:"location"`
}

// Insights is the structured payload of an industry-insight generation
type Insights struct {
	SalaryRanges      []SalaryRange `json:"salaryRanges" yaml:"salaryRanges"`
	GrowthRate        float64       `json:"growthRate" yaml:"growthRate"`
	DemandLevel       string        `json:"demandLevel" yaml:"demandLevel"`
	TopSkills         []string      `json:"topSkills" yaml:"topSkills"`
	MarketOutlook     string        `json:"marketOutlook" yaml:"marketOutlook"`
	KeyTrends         []string      `json:"keyTrends" yaml:"keyTrends"`
	RecommendedSkills []string      `json:"recommendedSkills" yaml:"recommendedSkills"`
}

// IndustryInsight is a persisted Insights record for one industry
type IndustryInsight struct {
	Insights
	ID          string    `json:"id"`
	Industry    string    `json:"industry"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"lastUpdated"`
	NextUpdate  time.Time `json:"nextUpdate"`
}

// Resource is a learning resource within a roadmap phase
type Resource struct {
	Type     string `json:"type" yaml:"type"`
	Title    string `json:"title" yaml:"title"`
	Platform string `json:"platform" yaml:"platform"`
	Duration string `json:"duration" yaml:"duration"`
}

// Phase is one stage of a skill roadmap
type Phase struct {
	Phase     int        `json:"phase" yaml:"phase"`
	Name      string     `json:"name" yaml:"name"`
	Duration  string     `json:"duration" yaml:"duration"`
	Skills    []string   `json:"skills" yaml:"skills"`
	Resources []Resource `json:"resources" yaml:"resources"`
	Milestone string     `json:"milestone" yaml:"milestone"`
	Tips      string     `json:"tips" yaml:"tips"`
}

// Roadmap is the structured payload of a roadmap generation
type Roadmap struct {
	Phases []Phase `json:"phases" yaml:"phases"`
}

// SkillRoadmap is a persisted roadmap for one user
type SkillRoadmap struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	CurrentSkills     []string  `json:"currentSkills"`
	TargetSkills      []string  `json:"targetSkills"`
	Phases            []Phase   `json:"phases"`
	OverallProgress   int       `json:"overallProgress"`
	EstimatedDuration string    `json:"estimatedDuration"`
	Source            string    `json:"source"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// TestCase is one example input/output of a coding challenge
type TestCase struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expectedOutput" yaml:"expectedOutput"`
	Explanation    string `json:"explanation" yaml:"explanation"`
}

// Challenge status values
const (
	ChallengeNotStarted = "not-started"
	ChallengeAttempted  = "attempted"
	ChallengeSolved     = "solved"
)

// CodingChallenge is a practice problem, optionally owned by a user
type CodingChallenge struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Difficulty  string     `json:"difficulty" yaml:"difficulty"`
	Language    string     `json:"language" yaml:"language"`
	Category    string     `json:"category" yaml:"category"`
	StarterCode string     `json:"starterCode" yaml:"starterCode"`
	Solution    string     `json:"solution" yaml:"solution"`
	TestCases   []TestCase `json:"testCases" yaml:"testCases"`
	Hints       []string   `json:"hints" yaml:"hints"`
	Status      string     `json:"status,omitempty"`
	UserCode    string     `json:"userCode,omitempty"`
	Submissions int        `json:"submissions"`
	Passed      int        `json:"passed"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
}

// ChallengeSet is the structured payload of a challenge generation
type ChallengeSet struct {
	Challenges []CodingChallenge `json:"challenges" yaml:"challenges"`
}

// TestResult is the outcome of one test case run by the client
type TestResult struct {
	Input  string `json:"input"`
	Passed bool   `json:"passed"`
	Output string `json:"output,omitempty"`
}

// BankQuestion is an entry of the static interview question bank
type BankQuestion struct {
	ID          string   `json:"id" yaml:"id"`
	Question    string   `json:"question" yaml:"question"`
	Answer      string   `json:"answer" yaml:"answer"`
	Explanation string   `json:"explanation" yaml:"explanation"`
	Company     string   `json:"company" yaml:"company"`
	Category    string   `json:"category" yaml:"category"`
	Difficulty  string   `json:"difficulty" yaml:"difficulty"`
	Role        string   `json:"role" yaml:"role"`
	Tags        []string `json:"tags" yaml:"tags"`
	Frequency   int      `json:"frequency" yaml:"frequency"`
	MostAskedBy []string `json:"mostAskedBy" yaml:"mostAskedBy"`
}

// Question bank progress values
const (
	QuestionNotAttempted = "not-attempted"
	QuestionAttempted    = "attempted"
	QuestionMastered     = "mastered"
)

// QuestionProgress is a user's practice state for one bank question
type QuestionProgress struct {
	UserID        string    `json:"userId" db:"user_id"`
	QuestionID    string    `json:"questionId" db:"question_id"`
	Status        string    `json:"status" db:"status"`
	Attempts      int       `json:"attempts" db:"attempts"`
	LastAttempted time.Time `json:"lastAttempted" db:"last_attempted"`
}
