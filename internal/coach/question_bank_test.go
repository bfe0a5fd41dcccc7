package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionsByCompany(t *testing.T) {
	qs := QuestionsByCompany("google", "", 0)
	require.NotEmpty(t, qs)

	for i, q := range qs {
		assert.Equal(t, "Google", q.Company)
		if i > 0 {
			assert.GreaterOrEqual(t, qs[i-1].Frequency, q.Frequency)
		}
	}
	assert.Equal(t, 60, qs[0].Frequency)

	assert.Len(t, QuestionsByCompany("Google", "", 2), 2)
}

func TestQuestionsByCompanyDifficulty(t *testing.T) {
	qs := QuestionsByCompany("Amazon", "Hard", 0)
	require.Len(t, qs, 3)
	for _, q := range qs {
		assert.Equal(t, "Hard", q.Difficulty)
	}
}

func TestQuestionsByCategory(t *testing.T) {
	qs := QuestionsByCategory("Behavioral", "", 0)
	require.Len(t, qs, 4)
	for _, q := range qs {
		assert.Equal(t, "Behavioral", q.Category)
	}
}

func TestAllQuestions(t *testing.T) {
	assert.Len(t, AllQuestions(BankFilter{}), 20)
	assert.Len(t, AllQuestions(BankFilter{Limit: 5}), 5)
	assert.Empty(t, AllQuestions(BankFilter{Company: "Nowhere"}))
	assert.NotNil(t, AllQuestions(BankFilter{Company: "Nowhere"}))

	designs := AllQuestions(BankFilter{Category: "System Design", Company: "Microsoft"})
	require.Len(t, designs, 1)
	assert.Equal(t, 40, designs[0].Frequency)
}
