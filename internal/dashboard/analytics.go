// Package dashboard derives progress analytics from stored assessments.
package dashboard

import (
	"math"

	"github.com/alecf/careerprep/internal/models"
)

const (
	// Window is how many recent assessments the analytics cover
	Window = 10

	recentCount = 5
)

// CategoryStats summarises the scores of one assessment category
type CategoryStats struct {
	Category string    `json:"category"`
	AvgScore float64   `json:"avgScore"`
	Count    int       `json:"count"`
	Scores   []float64 `json:"scores"`
}

// Analytics is the dashboard summary of a user's recent assessments
type Analytics struct {
	TotalAssessments  int                 `json:"totalAssessments"`
	AvgScore          float64             `json:"avgScore"`
	Categories        []CategoryStats     `json:"categoryData"`
	RecentAssessments []models.Assessment `json:"recentAssessments"`
}

// Compute summarises assessments, which must be ordered newest first.
// Only the first Window entries are considered; averages are rounded to
// one decimal.
func Compute(assessments []models.Assessment) Analytics {
	if len(assessments) > Window {
		assessments = assessments[:Window]
	}

	out := Analytics{
		TotalAssessments:  len(assessments),
		Categories:        []CategoryStats{},
		RecentAssessments: assessments[:min(recentCount, len(assessments))],
	}
	if len(assessments) == 0 {
		out.RecentAssessments = []models.Assessment{}
		return out
	}

	var total float64
	index := map[string]int{}
	for _, a := range assessments {
		total += a.QuizScore

		i, ok := index[a.Category]
		if !ok {
			i = len(out.Categories)
			index[a.Category] = i
			out.Categories = append(out.Categories, CategoryStats{Category: a.Category})
		}
		out.Categories[i].Scores = append(out.Categories[i].Scores, a.QuizScore)
	}
	out.AvgScore = round1(total / float64(len(assessments)))

	for i := range out.Categories {
		c := &out.Categories[i]
		c.Count = len(c.Scores)
		var sum float64
		for _, s := range c.Scores {
			sum += s
		}
		c.AvgScore = round1(sum / float64(c.Count))
	}

	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
