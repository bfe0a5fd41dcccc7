package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/alecf/careerprep/internal/models"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	clock time.Time
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	st, err := Open(s.ctx, "sqlite", filepath.Join(s.T().TempDir(), "nested", "careerprep.db"))
	s.Require().NoError(err)

	s.clock = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time {
		s.clock = s.clock.Add(time.Second)
		return s.clock
	}
	s.store = st
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreTestSuite) TestOpenRejectsUnknownDriver() {
	_, err := Open(s.ctx, "mysql", "whatever")
	s.Error(err)
}

func (s *StoreTestSuite) TestUsers() {
	_, err := s.store.GetUser(s.ctx, "u1")
	s.ErrorIs(err, ErrNotFound)

	u := &models.User{ID: "u1", Name: "Ada", Industry: "Finance", Experience: 3, Skills: []string{"Excel"}}
	s.Require().NoError(s.store.UpsertUser(s.ctx, u))
	s.Require().NoError(s.store.SetResumeText(s.ctx, "u1", "resume body"))

	u.Skills = []string{"Excel", "SQL"}
	u.Bio = "auditor"
	s.Require().NoError(s.store.UpsertUser(s.ctx, u))

	got, err := s.store.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("Ada", got.Name)
	s.Equal("auditor", got.Bio)
	s.Equal([]string{"Excel", "SQL"}, got.Skills)
	s.Equal("resume body", got.ResumeText)
	s.True(got.UpdatedAt.After(got.CreatedAt))

	s.Require().NoError(s.store.UpdateUserSkills(s.ctx, "u1", nil))
	got, err = s.store.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]string{}, got.Skills)

	s.ErrorIs(s.store.UpdateUserSkills(s.ctx, "ghost", []string{"x"}), ErrNotFound)
	s.ErrorIs(s.store.SetResumeText(s.ctx, "ghost", "x"), ErrNotFound)
}

func (s *StoreTestSuite) TestCoverLetters() {
	first := &models.CoverLetter{UserID: "u1", Content: "one", CompanyName: "Acme", JobTitle: "Dev", Source: "live"}
	second := &models.CoverLetter{UserID: "u1", Content: "two", CompanyName: "Initech", JobTitle: "Dev", Source: "fallback"}
	other := &models.CoverLetter{UserID: "u2", Content: "three", CompanyName: "Acme", JobTitle: "Dev"}
	for _, cl := range []*models.CoverLetter{first, second, other} {
		s.Require().NoError(s.store.CreateCoverLetter(s.ctx, cl))
	}
	s.NotEmpty(first.ID)
	s.Equal("completed", first.Status)

	list, err := s.store.ListCoverLetters(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("two", list[0].Content)
	s.Equal("one", list[1].Content)

	// Scoped to the owner
	_, err = s.store.GetCoverLetter(s.ctx, "u2", first.ID)
	s.ErrorIs(err, ErrNotFound)

	updated, err := s.store.UpdateCoverLetter(s.ctx, "u1", first.ID, "edited")
	s.Require().NoError(err)
	s.Equal("edited", updated.Content)
	s.Equal("live", updated.Source)

	_, err = s.store.UpdateCoverLetter(s.ctx, "u2", first.ID, "hijack")
	s.ErrorIs(err, ErrNotFound)

	s.ErrorIs(s.store.DeleteCoverLetter(s.ctx, "u2", first.ID), ErrNotFound)
	s.Require().NoError(s.store.DeleteCoverLetter(s.ctx, "u1", first.ID))
	_, err = s.store.GetCoverLetter(s.ctx, "u1", first.ID)
	s.ErrorIs(err, ErrNotFound)

	empty, err := s.store.ListCoverLetters(s.ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func (s *StoreTestSuite) TestAssessments() {
	for _, score := range []float64{40, 60, 80} {
		s.Require().NoError(s.store.CreateAssessment(s.ctx, &models.Assessment{
			UserID:    "u1",
			QuizScore: score,
			Category:  "Technical",
			Questions: []models.QuestionResult{{Question: "Q", Answer: "A", UserAnswer: "B"}},
		}))
	}

	all, err := s.store.ListAssessments(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(40.0, all[0].QuizScore)
	s.Equal("B", all[0].Questions[0].UserAnswer)

	recent, err := s.store.RecentAssessments(s.ctx, "u1", 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(80.0, recent[0].QuizScore)
	s.Equal(60.0, recent[1].QuizScore)
}

func (s *StoreTestSuite) TestIndustryInsights() {
	_, err := s.store.GetIndustryInsight(s.ctx, "Finance")
	s.ErrorIs(err, ErrNotFound)

	in := &models.IndustryInsight{
		Industry: "Finance",
		Source:   "fallback",
		Insights: models.Insights{
			GrowthRate: 12,
			TopSkills:  []string{"Excel"},
			SalaryRanges: []models.SalaryRange{
				{Role: "Analyst", Min: 1, Max: 3, Median: 2, Location: "Remote"},
			},
		},
	}
	s.Require().NoError(s.store.SaveIndustryInsight(s.ctx, in))
	s.Equal(InsightRefreshInterval, in.NextUpdate.Sub(in.LastUpdated))

	in.Source = "live"
	in.GrowthRate = 15
	s.Require().NoError(s.store.SaveIndustryInsight(s.ctx, in))

	got, err := s.store.GetIndustryInsight(s.ctx, "Finance")
	s.Require().NoError(err)
	s.Equal("live", got.Source)
	s.Equal(15.0, got.GrowthRate)
	s.Equal("Analyst", got.SalaryRanges[0].Role)
	s.True(got.NextUpdate.Equal(in.NextUpdate))
}

func (s *StoreTestSuite) TestSkillRoadmaps() {
	_, err := s.store.GetSkillRoadmap(s.ctx, "u1")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.store.UpdateRoadmapProgress(s.ctx, "u1", 50)
	s.ErrorIs(err, ErrNotFound)

	rm := &models.SkillRoadmap{
		UserID:            "u1",
		CurrentSkills:     []string{"Go"},
		TargetSkills:      []string{"Docker", "Kubernetes"},
		Phases:            []models.Phase{{Phase: 1, Name: "Foundation", Skills: []string{"Docker"}}},
		EstimatedDuration: "3-6 months",
		Source:            "live",
	}
	s.Require().NoError(s.store.UpsertSkillRoadmap(s.ctx, rm))
	firstID := rm.ID

	rm.ID = ""
	rm.Source = "fallback"
	s.Require().NoError(s.store.UpsertSkillRoadmap(s.ctx, rm))

	got, err := s.store.GetSkillRoadmap(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(firstID, got.ID)
	s.Equal("fallback", got.Source)
	s.Equal([]string{"Docker", "Kubernetes"}, got.TargetSkills)
	s.Equal("Foundation", got.Phases[0].Name)

	updated, err := s.store.UpdateRoadmapProgress(s.ctx, "u1", 50)
	s.Require().NoError(err)
	s.Equal(50, updated.OverallProgress)
}

func (s *StoreTestSuite) TestChallenges() {
	c := &models.CodingChallenge{
		UserID:     "u1",
		Title:      "Two Sum",
		Difficulty: "Easy",
		Language:   "Go",
		TestCases:  []models.TestCase{{Input: "x", ExpectedOutput: "y"}},
		Hints:      []string{"hash map"},
	}
	s.Require().NoError(s.store.CreateChallenge(s.ctx, c))
	s.Equal(models.ChallengeNotStarted, c.Status)
	s.Require().NoError(s.store.CreateChallenge(s.ctx, &models.CodingChallenge{UserID: "u1", Title: "Binary Search", Difficulty: "Medium", Language: "Go"}))
	s.Require().NoError(s.store.CreateChallenge(s.ctx, &models.CodingChallenge{UserID: "u2", Title: "Two Sum", Difficulty: "Easy", Language: "Go"}))

	found, err := s.store.FindChallenge(s.ctx, "u1", "Two Sum", "Go")
	s.Require().NoError(err)
	s.Equal(c.ID, found.ID)
	s.Equal("y", found.TestCases[0].ExpectedOutput)

	_, err = s.store.FindChallenge(s.ctx, "u1", "Two Sum", "Python")
	s.ErrorIs(err, ErrNotFound)

	mine, err := s.store.ListChallenges(s.ctx, ChallengeFilter{UserID: "u1"})
	s.Require().NoError(err)
	s.Len(mine, 2)
	s.Equal("Two Sum", mine[0].Title)

	medium, err := s.store.ListChallenges(s.ctx, ChallengeFilter{UserID: "u1", Difficulty: "Medium"})
	s.Require().NoError(err)
	s.Require().Len(medium, 1)
	s.Equal("Binary Search", medium[0].Title)

	c.UserCode = "func twoSum() {}"
	c.Submissions = 1
	c.Passed = 1
	c.Status = models.ChallengeSolved
	s.Require().NoError(s.store.UpdateChallenge(s.ctx, c))

	got, err := s.store.GetChallenge(s.ctx, "u1", c.ID)
	s.Require().NoError(err)
	s.Equal(models.ChallengeSolved, got.Status)
	s.Equal(1, got.Submissions)

	_, err = s.store.GetChallenge(s.ctx, "u2", c.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestFavoriteQuestions() {
	ids, err := s.store.ListFavoriteQuestions(s.ctx, "u1")
	s.Require().NoError(err)
	s.Empty(ids)

	on, err := s.store.ToggleFavoriteQuestion(s.ctx, "u1", "q01")
	s.Require().NoError(err)
	s.True(on)
	on, err = s.store.ToggleFavoriteQuestion(s.ctx, "u1", "q02")
	s.Require().NoError(err)
	s.True(on)
	_, err = s.store.ToggleFavoriteQuestion(s.ctx, "u2", "q01")
	s.Require().NoError(err)

	ids, err = s.store.ListFavoriteQuestions(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]string{"q02", "q01"}, ids)

	on, err = s.store.ToggleFavoriteQuestion(s.ctx, "u1", "q01")
	s.Require().NoError(err)
	s.False(on)

	ids, err = s.store.ListFavoriteQuestions(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]string{"q02"}, ids)

	ids, err = s.store.ListFavoriteQuestions(s.ctx, "u2")
	s.Require().NoError(err)
	s.Equal([]string{"q01"}, ids)
}

func (s *StoreTestSuite) TestQuestionProgress() {
	p, err := s.store.MarkQuestionProgress(s.ctx, "u1", "q01", models.QuestionAttempted)
	s.Require().NoError(err)
	s.Equal(1, p.Attempts)
	s.Equal(models.QuestionAttempted, p.Status)
	first := p.LastAttempted

	p, err = s.store.MarkQuestionProgress(s.ctx, "u1", "q01", models.QuestionMastered)
	s.Require().NoError(err)
	s.Equal(2, p.Attempts)
	s.Equal(models.QuestionMastered, p.Status)
	s.True(p.LastAttempted.After(first))

	_, err = s.store.MarkQuestionProgress(s.ctx, "u1", "q02", models.QuestionAttempted)
	s.Require().NoError(err)
	_, err = s.store.MarkQuestionProgress(s.ctx, "u2", "q01", models.QuestionAttempted)
	s.Require().NoError(err)

	list, err := s.store.ListQuestionProgress(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("q02", list[0].QuestionID)
	s.Equal("q01", list[1].QuestionID)
	s.Equal(2, list[1].Attempts)

	list, err = s.store.ListQuestionProgress(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(list)
}
