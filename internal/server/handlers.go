package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alecf/careerprep/internal/coach"
	"github.com/alecf/careerprep/internal/fallback"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/resume"
)

type profileRequest struct {
	Name       string   `json:"name"`
	Industry   string   `json:"industry"`
	Experience int      `json:"experience" binding:"min=0"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
}

type coverLetterUpdate struct {
	Content string `json:"content" binding:"required"`
}

type jobQuestionsRequest struct {
	JobDescription string `json:"jobDescription"`
}

type quizResultRequest struct {
	Questions []models.QuizQuestion `json:"questions" binding:"required,min=1"`
	Answers   []string              `json:"answers"`
	Score     float64               `json:"score" binding:"min=0,max=100"`
}

type roadmapProgressRequest struct {
	CompletedSkills []string `json:"completedSkills" binding:"required"`
}

type questionProgressRequest struct {
	Status string `json:"status" binding:"required"`
}

type submitRequest struct {
	Code        string              `json:"code" binding:"required"`
	TestResults []models.TestResult `json:"testResults"`
}

func (s *Server) getProfile(c *gin.Context) {
	u, err := s.svc.Profile(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u, err := s.svc.UpdateProfile(c.Request.Context(), userID(c), models.User{
		Name:       req.Name,
		Industry:   req.Industry,
		Experience: req.Experience,
		Bio:        req.Bio,
		Skills:     req.Skills,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) uploadResume(c *gin.Context) {
	fh, err := c.FormFile("resume")
	if err != nil {
		badRequest(c, err)
		return
	}
	if fh.Size > maxResumeSize {
		badRequest(c, fmt.Errorf("resume exceeds %d bytes", maxResumeSize))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}

	mediaType := resume.DetectType(fh.Filename, fh.Header.Get("Content-Type"))
	u, err := s.svc.ImportResume(c.Request.Context(), userID(c), mediaType, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "resumeLength": len(u.ResumeText)})
}

func (s *Server) createCoverLetter(c *gin.Context) {
	var job models.JobTarget
	if err := c.ShouldBindJSON(&job); err != nil {
		badRequest(c, err)
		return
	}

	cl, err := s.svc.GenerateCoverLetter(c.Request.Context(), userID(c), job)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (s *Server) listCoverLetters(c *gin.Context) {
	list, err := s.svc.CoverLetters(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coverLetters": list})
}

func (s *Server) getCoverLetter(c *gin.Context) {
	cl, err := s.svc.CoverLetter(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (s *Server) updateCoverLetter(c *gin.Context) {
	var req coverLetterUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cl, err := s.svc.UpdateCoverLetter(c.Request.Context(), userID(c), c.Param("id"), req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (s *Server) deleteCoverLetter(c *gin.Context) {
	if err := s.svc.DeleteCoverLetter(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) generateQuiz(c *gin.Context) {
	res, err := s.svc.GenerateQuiz(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": res.Value.Questions, "source": res.Source})
}

func (s *Server) saveQuizResult(c *gin.Context) {
	var req quizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	a, err := s.svc.SaveQuizResult(c.Request.Context(), userID(c), req.Questions, req.Answers, req.Score)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) listAssessments(c *gin.Context) {
	list, err := s.svc.Assessments(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": list})
}

func (s *Server) generateJobQuestions(c *gin.Context) {
	var req jobQuestionsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	res, err := s.svc.GenerateJobQuestions(c.Request.Context(), userID(c), req.JobDescription)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": res.Value.Questions, "source": res.Source})
}

func (s *Server) industryInsights(c *gin.Context) {
	in, err := s.svc.IndustryInsights(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

func (s *Server) listIndustries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"industries": fallback.Industries()})
}

func (s *Server) getRoadmap(c *gin.Context) {
	rm, err := s.svc.SkillRoadmap(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rm)
}

func (s *Server) generateRoadmap(c *gin.Context) {
	rm, err := s.svc.GenerateSkillRoadmap(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rm)
}

func (s *Server) updateRoadmapProgress(c *gin.Context) {
	var req roadmapProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rm, err := s.svc.UpdateRoadmapProgress(c.Request.Context(), userID(c), req.CompletedSkills)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rm)
}

func (s *Server) listChallenges(c *gin.Context) {
	list, err := s.svc.Challenges(c.Request.Context(), userID(c), c.Query("language"), c.Query("difficulty"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) generateChallenges(c *gin.Context) {
	list, err := s.svc.GenerateChallenges(c.Request.Context(), userID(c), c.Query("language"), c.Query("difficulty"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (s *Server) challengeProgress(c *gin.Context) {
	stats, err := s.svc.ChallengeProgress(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) challengeHints(c *gin.Context) {
	hints, err := s.svc.Hints(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hints": hints})
}

func (s *Server) submitChallenge(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := s.svc.SubmitChallenge(c.Request.Context(), userID(c), c.Param("id"), req.Code, req.TestResults)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) questionBank(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	questions := coach.AllQuestions(coach.BankFilter{
		Company:    c.Query("company"),
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Role:       c.Query("role"),
		Search:     c.Query("search"),
		Limit:      limit,
	})
	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": len(questions)})
}

func (s *Server) toggleFavoriteQuestion(c *gin.Context) {
	on, err := s.svc.ToggleFavoriteQuestion(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": on})
}

func (s *Server) markQuestionProgress(c *gin.Context) {
	var req questionProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := s.svc.MarkQuestionProgress(c.Request.Context(), userID(c), c.Param("id"), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) questionProgress(c *gin.Context) {
	report, err := s.svc.QuestionProgress(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) favoriteQuestions(c *gin.Context) {
	qs, err := s.svc.FavoriteQuestions(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": qs, "total": len(qs)})
}

func (s *Server) dashboard(c *gin.Context) {
	a, err := s.svc.Dashboard(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Orchestrator().Store().Stats())
}

func (s *Server) clearCache(c *gin.Context) {
	n := s.svc.Orchestrator().Store().Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": n})
}
