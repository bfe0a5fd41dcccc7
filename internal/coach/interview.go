package coach

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/fallback"
	"github.com/alecf/careerprep/internal/generate"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/parser"
	"github.com/alecf/careerprep/internal/prompt"
)

// AssessmentCategory is the category recorded for saved quiz results
const AssessmentCategory = "Technical"

// GenerateQuiz produces ten multiple-choice questions for the user's
// industry and skills
func (s *Service) GenerateQuiz(ctx context.Context, userID string) (generate.Result[models.Quiz], error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return generate.Result[models.Quiz]{}, err
	}

	return generate.Resolve(ctx, s.orch, generate.Request[models.Quiz]{
		Operation:    "quiz",
		Key:          cache.DeriveKey("quiz", user.Industry, joinSkills(user.Skills)),
		SystemPrompt: prompt.JSONSystemPrompt,
		Prompt:       prompt.Quiz(user.Industry, user.Skills),
		MaxTokens:    jsonMaxTokens,
		Temperature:  defaultTemperature,
		Shape:        quizShape,
		Fallback:     fallback.Quiz,
	}), nil
}

// GenerateJobQuestions produces targeted interview questions for the
// user's skills and an optional job description
func (s *Service) GenerateJobQuestions(ctx context.Context, userID, jobDescription string) (generate.Result[models.JobQuestionSet], error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return generate.Result[models.JobQuestionSet]{}, err
	}

	skillsList := "general technical skills"
	if len(user.Skills) > 0 {
		skillsList = strings.Join(user.Skills, ", ")
	}

	return generate.Resolve(ctx, s.orch, generate.Request[models.JobQuestionSet]{
		Operation:    "jobQuestions",
		Key:          cache.DeriveKey("jobQuestions", joinSkills(user.Skills), jobDescription),
		SystemPrompt: prompt.JSONSystemPrompt,
		Prompt:       prompt.JobQuestions(skillsList, jobDescription, user.ResumeText),
		MaxTokens:    jsonMaxTokens,
		Temperature:  defaultTemperature,
		Shape:        jobQuestionsShape,
		Fallback:     func() models.JobQuestionSet { return fallback.JobQuestions(skillsList) },
	}), nil
}

// SaveQuizResult grades the answers against the questions, asks for an
// improvement tip when any answer is wrong, and stores the assessment.
// A missing answer counts as wrong. The tip is best effort and never
// cached; when it cannot be generated it is left empty.
func (s *Service) SaveQuizResult(ctx context.Context, userID string, questions []models.QuizQuestion, answers []string, score float64) (*models.Assessment, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]models.QuestionResult, len(questions))
	var wrong []models.QuestionResult
	for i, q := range questions {
		var answer string
		if i < len(answers) {
			answer = answers[i]
		}
		results[i] = models.QuestionResult{
			Question:    q.Question,
			Answer:      q.CorrectAnswer,
			UserAnswer:  answer,
			IsCorrect:   q.CorrectAnswer == answer,
			Explanation: q.Explanation,
		}
		if !results[i].IsCorrect {
			wrong = append(wrong, results[i])
		}
	}

	var tip string
	if len(wrong) > 0 {
		res := generate.Resolve(ctx, s.orch, generate.Request[string]{
			Operation:    "improvementTip",
			SystemPrompt: prompt.CoachSystemPrompt,
			Prompt:       prompt.ImprovementTip(user.Industry, wrong),
			MaxTokens:    textMaxTokens,
			Temperature:  defaultTemperature,
			Shape:        parser.Text(),
			Fallback:     func() string { return "" },
		})
		tip = res.Value
		s.logger.Debug("improvement tip", zap.String("source", string(res.Source)), zap.Int("wrong", len(wrong)))
	}

	a := &models.Assessment{
		UserID:         user.ID,
		QuizScore:      score,
		Questions:      results,
		Category:       AssessmentCategory,
		ImprovementTip: tip,
	}
	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Assessments lists the user's assessments, oldest first
func (s *Service) Assessments(ctx context.Context, userID string) ([]models.Assessment, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListAssessments(ctx, userID)
}
