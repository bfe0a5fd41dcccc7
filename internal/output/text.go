package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecf/careerprep/internal/coach"
	"github.com/alecf/careerprep/internal/dashboard"
	"github.com/alecf/careerprep/internal/models"
)

// Profile prints a user profile
func Profile(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "Name:       %s\n", orDash(u.Name))
	fmt.Fprintf(w, "Industry:   %s\n", orDash(u.Industry))
	fmt.Fprintf(w, "Experience: %d years\n", u.Experience)
	fmt.Fprintf(w, "Skills:     %s\n", orDash(strings.Join(u.Skills, ", ")))
	if u.Bio != "" {
		fmt.Fprintf(w, "Bio:        %s\n", u.Bio)
	}
	if u.ResumeText != "" {
		fmt.Fprintf(w, "Resume:     %d characters imported\n", len(u.ResumeText))
	}
}

// CoverLetter prints a cover letter with a short header
func CoverLetter(w io.Writer, cl *models.CoverLetter) {
	fmt.Fprintf(w, "# %s at %s (%s)\n\n", cl.JobTitle, cl.CompanyName, cl.ID)
	fmt.Fprintln(w, cl.Content)
}

// CoverLetters prints a one-line summary per cover letter
func CoverLetters(w io.Writer, list []models.CoverLetter) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No cover letters yet.")
		return
	}
	for _, cl := range list {
		fmt.Fprintf(w, "%s  %s  %s at %s\n", cl.ID, cl.CreatedAt.Format("2006-01-02"), cl.JobTitle, cl.CompanyName)
	}
}

// Quiz prints the questions of a quiz with lettered options
func Quiz(w io.Writer, q models.Quiz, showAnswers bool) {
	for i, question := range q.Questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, question.Question)
		for j, opt := range question.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'a'+j, opt)
		}
		if showAnswers {
			fmt.Fprintf(w, "   Answer: %s\n", question.CorrectAnswer)
			if question.Explanation != "" {
				fmt.Fprintf(w, "   %s\n", question.Explanation)
			}
		}
		fmt.Fprintln(w)
	}
}

// Assessment prints a graded quiz
func Assessment(w io.Writer, a *models.Assessment) {
	var correct int
	for _, q := range a.Questions {
		if q.IsCorrect {
			correct++
		}
	}
	fmt.Fprintf(w, "Score: %.1f%% (%d/%d correct)\n", a.QuizScore, correct, len(a.Questions))
	if a.ImprovementTip != "" {
		fmt.Fprintf(w, "\nTip: %s\n", a.ImprovementTip)
	}
}

// JobQuestions prints targeted interview questions with coaching notes
func JobQuestions(w io.Writer, set models.JobQuestionSet) {
	for i, q := range set.Questions {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, q.Type, q.Question)
		if q.Context != "" {
			fmt.Fprintf(w, "   Why: %s\n", q.Context)
		}
		if q.SuggestedAnswer != "" {
			fmt.Fprintf(w, "   Approach: %s\n", q.SuggestedAnswer)
		}
		for _, tip := range q.Tips {
			fmt.Fprintf(w, "   - %s\n", tip)
		}
		fmt.Fprintln(w)
	}
}

// Insights prints market insights for an industry
func Insights(w io.Writer, in *models.IndustryInsight) {
	fmt.Fprintf(w, "%s\n", in.Industry)
	fmt.Fprintf(w, "  Growth:  %.1f%%   Demand: %s   Outlook: %s\n", in.GrowthRate, in.DemandLevel, in.MarketOutlook)
	fmt.Fprintf(w, "  Top skills: %s\n", strings.Join(in.TopSkills, ", "))
	fmt.Fprintf(w, "  Recommended: %s\n", strings.Join(in.RecommendedSkills, ", "))

	fmt.Fprintln(w, "\n  Salary ranges:")
	for _, r := range in.SalaryRanges {
		fmt.Fprintf(w, "    %-24s %8.0f - %8.0f (median %.0f) %s\n", r.Role, r.Min, r.Max, r.Median, r.Location)
	}

	fmt.Fprintln(w, "\n  Trends:")
	for _, t := range in.KeyTrends {
		fmt.Fprintf(w, "    - %s\n", t)
	}
	fmt.Fprintf(w, "\n  Next update: %s\n", in.NextUpdate.Format("2006-01-02"))
}

// Roadmap prints a skill roadmap phase by phase
func Roadmap(w io.Writer, rm *models.SkillRoadmap) {
	fmt.Fprintf(w, "Progress: %d%%   Estimated duration: %s\n", rm.OverallProgress, rm.EstimatedDuration)
	fmt.Fprintf(w, "Targets:  %s\n\n", strings.Join(rm.TargetSkills, ", "))
	for _, p := range rm.Phases {
		fmt.Fprintf(w, "Phase %d: %s (%s)\n", p.Phase, p.Name, p.Duration)
		if len(p.Skills) > 0 {
			fmt.Fprintf(w, "  Skills: %s\n", strings.Join(p.Skills, ", "))
		}
		for _, r := range p.Resources {
			fmt.Fprintf(w, "  - %s: %s (%s, %s)\n", r.Type, r.Title, r.Platform, r.Duration)
		}
		if p.Milestone != "" {
			fmt.Fprintf(w, "  Milestone: %s\n", p.Milestone)
		}
		fmt.Fprintln(w)
	}
}

// Challenges prints a challenge list
func Challenges(w io.Writer, l *coach.ChallengeList) {
	fmt.Fprintf(w, "%d challenges, %d solved\n\n", l.Total, l.Solved)
	for _, c := range l.Challenges {
		fmt.Fprintf(w, "%s  [%s] %s (%s, %s)\n", c.ID, c.Difficulty, c.Title, c.Language, c.Status)
	}
}

// Submission prints the outcome of a code submission
func Submission(w io.Writer, s *coach.Submission) {
	verdict := "not all tests passed"
	if s.AllPassed {
		verdict = "solved"
	}
	fmt.Fprintf(w, "%s: %d/%d tests passed, %s (submission %d)\n",
		s.Challenge.Title, s.PassedTests, s.TotalTests, verdict, s.Challenge.Submissions)
}

// ChallengeStats prints coding practice statistics
func ChallengeStats(w io.Writer, s *coach.ChallengeStats) {
	fmt.Fprintf(w, "Total: %d  Solved: %d  Attempted: %d  Not started: %d\n", s.Total, s.Solved, s.Attempted, s.NotStarted)
	fmt.Fprintf(w, "Easy: %d  Medium: %d  Hard: %d\n", s.ByDifficulty["easy"], s.ByDifficulty["medium"], s.ByDifficulty["hard"])
	for lang, n := range s.ByLanguage {
		fmt.Fprintf(w, "%s: %d\n", lang, n)
	}
	fmt.Fprintf(w, "Submissions: %d\n", s.TotalSubmissions)
}

// BankQuestions prints interview bank questions
func BankQuestions(w io.Writer, qs []models.BankQuestion, showAnswers bool) {
	for _, q := range qs {
		fmt.Fprintf(w, "[%s/%s/%s] %s\n", q.Company, q.Category, q.Difficulty, q.Question)
		if showAnswers {
			fmt.Fprintf(w, "  %s\n", q.Answer)
		}
	}
}

// BankProgress prints question bank practice statistics
func BankProgress(w io.Writer, p *coach.BankProgress) {
	st := p.Stats
	fmt.Fprintf(w, "Practiced: %d  Mastered: %d  Attempted: %d  Favorites: %d\n", st.Total, st.Mastered, st.Attempted, st.Favorites)
	for _, d := range []string{"Easy", "Medium", "Hard"} {
		if n := st.ByDifficulty[d]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", d, n)
		}
	}
	for _, q := range p.Progress {
		fmt.Fprintf(w, "  %-5s %-13s x%d  %s\n", q.QuestionID, q.Status, q.Attempts, q.LastAttempted.Format("2006-01-02"))
	}
}

// Dashboard prints assessment analytics
func Dashboard(w io.Writer, a *dashboard.Analytics) {
	fmt.Fprintf(w, "Assessments: %d   Average: %.1f%%\n", a.TotalAssessments, a.AvgScore)
	for _, c := range a.Categories {
		fmt.Fprintf(w, "  %-12s %5.1f%% over %d\n", c.Category, c.AvgScore, c.Count)
	}
	if len(a.RecentAssessments) > 0 {
		fmt.Fprintln(w, "\nRecent:")
		for _, r := range a.RecentAssessments {
			fmt.Fprintf(w, "  %s  %5.1f%%  %s\n", r.CreatedAt.Format("2006-01-02"), r.QuizScore, r.Category)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
