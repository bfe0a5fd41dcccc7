package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecf/careerprep/internal/models"
)

func assessment(category string, score float64) models.Assessment {
	return models.Assessment{Category: category, QuizScore: score}
}

func TestComputeEmpty(t *testing.T) {
	a := Compute(nil)

	assert.Zero(t, a.TotalAssessments)
	assert.Zero(t, a.AvgScore)
	assert.NotNil(t, a.Categories)
	assert.NotNil(t, a.RecentAssessments)
	assert.Empty(t, a.RecentAssessments)
}

func TestCompute(t *testing.T) {
	a := Compute([]models.Assessment{
		assessment("Technical", 90),
		assessment("Behavioral", 70),
		assessment("Technical", 65),
	})

	assert.Equal(t, 3, a.TotalAssessments)
	assert.Equal(t, 75.0, a.AvgScore)
	require.Len(t, a.Categories, 2)

	assert.Equal(t, "Technical", a.Categories[0].Category)
	assert.Equal(t, 2, a.Categories[0].Count)
	assert.Equal(t, 77.5, a.Categories[0].AvgScore)
	assert.Equal(t, []float64{90, 65}, a.Categories[0].Scores)

	assert.Equal(t, "Behavioral", a.Categories[1].Category)
	assert.Equal(t, 70.0, a.Categories[1].AvgScore)
	assert.Len(t, a.RecentAssessments, 3)
}

func TestComputeRoundsToOneDecimal(t *testing.T) {
	a := Compute([]models.Assessment{
		assessment("Technical", 100),
		assessment("Technical", 100),
		assessment("Technical", 90),
	})
	assert.Equal(t, 96.7, a.AvgScore)
}

func TestComputeWindow(t *testing.T) {
	var in []models.Assessment
	for i := 0; i < 12; i++ {
		in = append(in, assessment("Technical", float64(i)))
	}

	a := Compute(in)

	assert.Equal(t, Window, a.TotalAssessments)
	assert.Equal(t, 4.5, a.AvgScore)
	require.Len(t, a.RecentAssessments, 5)
	assert.Equal(t, 0.0, a.RecentAssessments[0].QuizScore)
	assert.Equal(t, 4.0, a.RecentAssessments[4].QuizScore)
}
