package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecf/careerprep/internal/coach"
	"github.com/alecf/careerprep/internal/config"
	"github.com/alecf/careerprep/internal/llm"
	"github.com/alecf/careerprep/internal/llm/llmtest"
	"github.com/alecf/careerprep/internal/models"
)

func TestSanitizeProfileName(t *testing.T) {
	tests := map[string]string{
		"llama3.2":       "llama3-2",
		"--qwen//coder-": "qwen-coder",
		"plain_name":     "plain_name",
		"a  b":           "a-b",
	}
	for input, want := range tests {
		assert.Equal(t, want, sanitizeProfileName(input), input)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, splitList(" Go, SQL,,Docker "))
	assert.Nil(t, splitList(""))
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", serverURL(":8080"))
	assert.Equal(t, "http://127.0.0.1:9000", serverURL("127.0.0.1:9000"))
	assert.Equal(t, "https://coach.example.com", serverURL("https://coach.example.com/"))
}

func TestProgressProviderRecordsUsage(t *testing.T) {
	fake := llmtest.Text("twelve chars")
	p := newProgressProvider(fake, "test-model", false)

	_, err := p.Generate(context.Background(), llm.Request{Model: "test-model", Prompt: "eight ch"})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), llm.Request{Model: "test-model", Prompt: "eight ch"})
	require.NoError(t, err)

	usage := p.Usage()
	assert.Equal(t, 2, usage.Calls)
	assert.Equal(t, 4, usage.TokensInput)
	assert.Equal(t, 6, usage.TokensOutput)
}

func TestProgressProviderSkipsFailedCalls(t *testing.T) {
	p := newProgressProvider(llmtest.Failing(errors.New("down")), "test-model", false)

	_, err := p.Generate(context.Background(), llm.Request{Prompt: "hello"})
	require.Error(t, err)
	assert.Zero(t, p.Usage().Calls)
}

func TestTakeQuiz(t *testing.T) {
	quiz := models.Quiz{Questions: []models.QuizQuestion{
		{Question: "Q1", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "B"},
		{Question: "Q2", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "D"},
		{Question: "Q3", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "A"},
		{Question: "Q4", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "C"},
	}}

	var out bytes.Buffer
	given, score := takeQuiz(strings.NewReader("b\nD\nz\n"), &out, quiz)

	assert.Equal(t, []string{"B", "D", "", ""}, given)
	assert.InDelta(t, 50.0, score, 0.001)
	assert.Contains(t, out.String(), "✓ Correct")
	assert.Contains(t, out.String(), "✗ Correct answer: A")
}

func TestProfileHint(t *testing.T) {
	err := profileHint(coach.ErrNoIndustry)
	assert.ErrorIs(t, err, coach.ErrNoIndustry)
	assert.Contains(t, err.Error(), "profile set --industry")

	other := errors.New("boom")
	assert.Same(t, other, profileHint(other))
}

func TestOrchestratorOptionsBreakerOptIn(t *testing.T) {
	cfg := config.Default()
	opts := orchestratorOptions(cfg, "m", 1000, nil)
	assert.Nil(t, opts.Breaker)

	cfg.Breaker.Enabled = true
	opts = orchestratorOptions(cfg, "m", 1000, nil)
	require.NotNil(t, opts.Breaker)
	assert.Equal(t, cfg.Breaker.MinRequests, opts.Breaker.MinRequests)
}

func TestAdminRequestSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cleared":4}`))
	}))
	defer srv.Close()

	var resp struct {
		Cleared int `json:"cleared"`
	}
	err := adminRequest(context.Background(), http.MethodDelete, adminTarget{base: srv.URL, token: "s3cret"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Cleared)

	err = adminRequest(context.Background(), http.MethodDelete, adminTarget{base: srv.URL, token: "wrong"}, &resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected the admin token")
}
