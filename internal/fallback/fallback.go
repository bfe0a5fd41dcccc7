// Package fallback produces static stand-in payloads for every generation
// call site. The tables are embedded and parsed once; each function only
// copies and substitutes, so calls never perform I/O and never fail.
package fallback

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/alecf/careerprep/internal/models"
)

//go:embed data/*.yaml data/*.tmpl
var dataFS embed.FS

// DefaultLanguage is used for coding challenges when none is requested
const DefaultLanguage = "JavaScript"

type insightSkills struct {
	TopSkills         []string `yaml:"topSkills"`
	RecommendedSkills []string `yaml:"recommendedSkills"`
}

type insightTable struct {
	DefaultIndustry string                          `yaml:"default_industry"`
	GrowthRate      float64                         `yaml:"growthRate"`
	DemandLevel     string                          `yaml:"demandLevel"`
	MarketOutlook   string                          `yaml:"marketOutlook"`
	KeyTrends       []string                        `yaml:"keyTrends"`
	Skills          map[string]insightSkills        `yaml:"skills"`
	Roles           map[string][]models.SalaryRange `yaml:"roles"`
}

type roadmapPhase struct {
	models.Phase `yaml:",inline"`
	From         int `yaml:"from"`
	To           int `yaml:"to"`
}

type roadmapTable struct {
	Phases []roadmapPhase `yaml:"phases"`
}

type bankTable struct {
	Questions []models.BankQuestion `yaml:"questions"`
}

var (
	quizTable        models.Quiz
	jobQuestionTable models.JobQuestionSet
	insights         insightTable
	roadmap          roadmapTable
	challengeTable   models.ChallengeSet
	bank             bankTable
	coverLetterTmpl  *template.Template
)

func init() {
	mustDecode("data/quiz.yaml", &quizTable)
	mustDecode("data/job_questions.yaml", &jobQuestionTable)
	mustDecode("data/insights.yaml", &insights)
	mustDecode("data/roadmap.yaml", &roadmap)
	mustDecode("data/challenges.yaml", &challengeTable)
	mustDecode("data/question_bank.yaml", &bank)

	coverLetterTmpl = template.Must(template.ParseFS(dataFS, "data/cover_letter.md.tmpl"))

	if _, ok := insights.Skills[insights.DefaultIndustry]; !ok {
		panic(fmt.Sprintf("fallback: default industry %q has no skills table", insights.DefaultIndustry))
	}
	if _, ok := insights.Roles[insights.DefaultIndustry]; !ok {
		panic(fmt.Sprintf("fallback: default industry %q has no roles table", insights.DefaultIndustry))
	}
}

func mustDecode(name string, out any) {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("fallback: failed to read %s: %v", name, err))
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("fallback: failed to parse %s: %v", name, err))
	}
}

// CoverLetter renders the stand-in cover letter for a job and candidate
func CoverLetter(user models.User, job models.JobTarget) string {
	skills := "key industry skills"
	if len(user.Skills) > 0 {
		skills = strings.Join(user.Skills[:min(3, len(user.Skills))], ", ")
	}
	bio := user.Bio
	if bio == "" {
		bio = "diverse project implementations"
	}
	name := user.Name
	if name == "" {
		name = "Candidate"
	}

	var b strings.Builder
	// The template is parsed at init and the data has only string and int
	// fields, so execution cannot fail.
	_ = coverLetterTmpl.Execute(&b, struct {
		JobTitle    string
		CompanyName string
		Industry    string
		Experience  int
		Skills      string
		Bio         string
		Name        string
	}{job.JobTitle, job.CompanyName, user.Industry, user.Experience, skills, bio, name})

	return b.String()
}

// Quiz returns the ten stand-in multiple-choice questions
func Quiz() models.Quiz {
	out := models.Quiz{Questions: make([]models.QuizQuestion, len(quizTable.Questions))}
	for i, q := range quizTable.Questions {
		q.Options = cloneStrings(q.Options)
		out.Questions[i] = q
	}
	return out
}

// JobQuestions returns the stand-in interview questions with skills
// substituted into the learning question
func JobQuestions(skills string) models.JobQuestionSet {
	if skills == "" {
		skills = "technology or framework"
	}
	out := models.JobQuestionSet{Questions: make([]models.JobQuestion, len(jobQuestionTable.Questions))}
	for i, q := range jobQuestionTable.Questions {
		q.Question = strings.ReplaceAll(q.Question, "{skills}", skills)
		q.Tips = cloneStrings(q.Tips)
		out.Questions[i] = q
	}
	return out
}

// IndustryInsights returns stand-in market data for industry. Unknown
// industries get the default industry's skills and roles.
func IndustryInsights(industry string) models.Insights {
	skills, ok := insights.Skills[industry]
	if !ok {
		skills = insights.Skills[insights.DefaultIndustry]
	}
	roles, ok := insights.Roles[industry]
	if !ok {
		roles = insights.Roles[insights.DefaultIndustry]
	}

	trends := make([]string, len(insights.KeyTrends))
	for i, t := range insights.KeyTrends {
		trends[i] = strings.ReplaceAll(t, "{industry}", industry)
	}

	return models.Insights{
		SalaryRanges:      append([]models.SalaryRange(nil), roles...),
		GrowthRate:        insights.GrowthRate,
		DemandLevel:       insights.DemandLevel,
		TopSkills:         cloneStrings(skills.TopSkills),
		MarketOutlook:     insights.MarketOutlook,
		KeyTrends:         trends,
		RecommendedSkills: cloneStrings(skills.RecommendedSkills),
	}
}

// Industries lists the industries with dedicated insight tables
func Industries() []string {
	names := make([]string, 0, len(insights.Skills))
	for name := range insights.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Roadmap returns the three-phase stand-in roadmap, spreading the skills
// to learn two, two, and the rest across the phases
func Roadmap(skillsToLearn []string) models.Roadmap {
	out := models.Roadmap{Phases: make([]models.Phase, len(roadmap.Phases))}
	for i, p := range roadmap.Phases {
		phase := p.Phase
		phase.Skills = cloneStrings(window(skillsToLearn, p.From, p.To))
		phase.Resources = append([]models.Resource(nil), p.Resources...)
		out.Phases[i] = phase
	}
	return out
}

// window returns s[from:to] clamped to the bounds of s; a negative to
// means the end of s
func window(s []string, from, to int) []string {
	if to < 0 || to > len(s) {
		to = len(s)
	}
	if from > to {
		from = to
	}
	return s[from:to]
}

// CodingChallenges returns the stand-in challenges in language, keeping
// only those of the given difficulty when one is set
func CodingChallenges(language, difficulty string) models.ChallengeSet {
	if language == "" {
		language = DefaultLanguage
	}
	out := models.ChallengeSet{Challenges: []models.CodingChallenge{}}
	for _, c := range challengeTable.Challenges {
		if difficulty != "" && !strings.EqualFold(c.Difficulty, difficulty) {
			continue
		}
		c.Language = language
		c.Status = models.ChallengeNotStarted
		c.TestCases = append([]models.TestCase(nil), c.TestCases...)
		c.Hints = cloneStrings(c.Hints)
		out.Challenges = append(out.Challenges, c)
	}
	return out
}

// QuestionBank returns a copy of the static interview question bank
func QuestionBank() []models.BankQuestion {
	out := make([]models.BankQuestion, len(bank.Questions))
	for i, q := range bank.Questions {
		q.Tags = cloneStrings(q.Tags)
		q.MostAskedBy = cloneStrings(q.MostAskedBy)
		out[i] = q
	}
	return out
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
