package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/llm"
	"github.com/alecf/careerprep/internal/llm/llmtest"
	"github.com/alecf/careerprep/internal/parser"
)

type question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type quiz struct {
	Questions []question `json:"questions"`
}

var quizShape = parser.JSON[quiz]("quiz", `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string"},
          "options": {"type": "array", "minItems": 4, "maxItems": 4, "items": {"type": "string"}},
          "correctAnswer": {"type": "string"},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`)

func fallbackQuiz() quiz {
	return quiz{Questions: []question{{
		Question:      "What is the time complexity of binary search?",
		Options:       []string{"O(n)", "O(log n)", "O(n log n)", "O(n²)"},
		CorrectAnswer: "O(log n)",
	}}}
}

func liveQuizJSON(n int) string {
	var qs []string
	for i := 0; i < n; i++ {
		qs = append(qs, fmt.Sprintf(
			`{"question":"Q%d","options":["a","b","c","d"],"correctAnswer":"a","explanation":"because"}`, i))
	}
	return "```json\n{\"questions\":[" + strings.Join(qs, ",") + "]}\n```"
}

func quizRequest(key string) Request[quiz] {
	return Request[quiz]{
		Operation: "quiz",
		Key:       key,
		Prompt:    "P",
		Shape:     quizShape,
		Fallback:  fallbackQuiz,
	}
}

func newTestOrchestrator(t *testing.T, provider llm.Provider, opts Options) (*Orchestrator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts.Logger = zap.New(core)
	return New(cache.New(cache.Options{}), provider, opts), logs
}

func TestResolveScenarioA(t *testing.T) {
	provider := llmtest.Text(liveQuizJSON(10))
	o, _ := newTestOrchestrator(t, provider, Options{Model: "gemini-2.0-flash"})

	res := Resolve(context.Background(), o, quizRequest("k1"))

	assert.Equal(t, SourceLive, res.Source)
	assert.False(t, res.WasFallback())
	require.Len(t, res.Value.Questions, 10)
	require.NotNil(t, res.Usage)

	cached, ok := o.Store().Get("k1")
	require.True(t, ok)
	assert.Equal(t, res.Value, cached)

	reqs := provider.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "P", reqs[0].Prompt)
	assert.Equal(t, "gemini-2.0-flash", reqs[0].Model)
	assert.True(t, reqs[0].JSON)
}

func TestResolveScenarioB(t *testing.T) {
	quotaErr := &llm.APIError{Provider: "gemini", StatusCode: http.StatusTooManyRequests, Err: errors.New("RESOURCE_EXHAUSTED")}
	o, logs := newTestOrchestrator(t, llmtest.Failing(quotaErr), Options{})

	res := Resolve(context.Background(), o, quizRequest("k1"))

	assert.Equal(t, fallbackQuiz(), res.Value)
	assert.True(t, res.WasFallback())
	assert.Equal(t, FailureQuota, res.Failure)
	assert.ErrorIs(t, res.Err, quotaErr)

	_, ok := o.Store().Get("k1")
	assert.False(t, ok, "fallback must not be cached")

	warnings := logs.FilterMessage("generation failed, using fallback").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "quota", warnings[0].ContextMap()["failure"])
}

func TestResolveWarmCacheIsIdempotent(t *testing.T) {
	provider := llmtest.Text(liveQuizJSON(3))
	o, _ := newTestOrchestrator(t, provider, Options{})

	first := Resolve(context.Background(), o, quizRequest("k"))
	second := Resolve(context.Background(), o, quizRequest("k"))

	assert.Equal(t, SourceLive, first.Source)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Value, second.Value)
	assert.Nil(t, second.Usage)
	assert.Equal(t, 1, provider.Calls(), "warm cache must not call the provider")
}

func TestResolveFallbackIsolation(t *testing.T) {
	provider := llmtest.New(
		llmtest.Reply{Err: errors.New("dial tcp: connection refused")},
		llmtest.Reply{Text: liveQuizJSON(2)},
	)
	o, _ := newTestOrchestrator(t, provider, Options{})

	first := Resolve(context.Background(), o, quizRequest("k"))
	assert.Equal(t, SourceFallback, first.Source)
	assert.Equal(t, FailureCall, first.Failure)

	_, ok := o.Store().Get("k")
	assert.False(t, ok)

	second := Resolve(context.Background(), o, quizRequest("k"))
	assert.Equal(t, SourceLive, second.Source, "second resolve must retry live")
	assert.Len(t, second.Value.Questions, 2)
	assert.Equal(t, 2, provider.Calls())
}

func TestResolveParseFailure(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"truncated", `{"questions":[{"question":"Q1","options":["a","b"`},
		{"prose", "I'm sorry, I can't help with that."},
		{"wrong shape", `{"questions":[{"question":"Q1","options":["a","b"],"correctAnswer":"a"}]}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, logs := newTestOrchestrator(t, llmtest.Text(tt.text), Options{})

			res := Resolve(context.Background(), o, quizRequest("k"))

			assert.Equal(t, fallbackQuiz(), res.Value)
			assert.Equal(t, FailureParse, res.Failure)
			_, ok := o.Store().Get("k")
			assert.False(t, ok)
			assert.Equal(t, 1, logs.FilterField(zap.String("failure", "parse-error")).Len())
		})
	}
}

func TestResolveFreeText(t *testing.T) {
	provider := llmtest.Text("\n  # Cover Letter\n\nDear Hiring Manager,\n  ")
	o, _ := newTestOrchestrator(t, provider, Options{})

	res := Resolve(context.Background(), o, Request[string]{
		Operation: "coverLetter",
		Key:       cache.DeriveKey("coverLetter", "Engineer", "Acme", "Software Development"),
		Prompt:    "Write a cover letter",
		Shape:     parser.Text(),
		Fallback:  func() string { return "template" },
	})

	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, "# Cover Letter\n\nDear Hiring Manager,", res.Value)
	assert.False(t, provider.Requests()[0].JSON)
}

func TestResolveCachedValueOfOtherTypeIsMiss(t *testing.T) {
	provider := llmtest.Text(liveQuizJSON(1))
	o, _ := newTestOrchestrator(t, provider, Options{})
	o.Store().Set("k", "not a quiz")

	res := Resolve(context.Background(), o, quizRequest("k"))
	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, 1, provider.Calls())
}

func TestResolveFallbackPanicPropagates(t *testing.T) {
	o, _ := newTestOrchestrator(t, llmtest.Failing(errors.New("boom")), Options{})
	req := quizRequest("k")
	req.Fallback = func() quiz { panic("defect in call site") }

	assert.Panics(t, func() {
		Resolve(context.Background(), o, req)
	})
}

func TestResolveScenarioCConcurrentMissesRace(t *testing.T) {
	provider := llmtest.New(
		llmtest.Reply{Text: liveQuizJSON(1)},
		llmtest.Reply{Text: liveQuizJSON(2)},
	)
	provider.Gate = make(chan struct{})
	o, _ := newTestOrchestrator(t, provider, Options{Coalesce: false})

	var wg sync.WaitGroup
	results := make([]Result[quiz], 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Resolve(context.Background(), o, quizRequest("race"))
		}(i)
	}

	require.Eventually(t, func() bool { return provider.Calls() == 2 }, time.Second, time.Millisecond)
	close(provider.Gate)
	wg.Wait()

	assert.Equal(t, 2, provider.Calls(), "both misses call the provider")
	for _, r := range results {
		assert.Equal(t, SourceLive, r.Source)
	}

	stats := o.Store().Stats()
	assert.Equal(t, 1, stats.Count)
	cached, ok := o.Store().Get("race")
	require.True(t, ok)
	n := len(cached.(quiz).Questions)
	assert.True(t, n == 1 || n == 2, "store holds whichever result was set last")
}

func TestResolveCoalescesConcurrentMisses(t *testing.T) {
	provider := llmtest.Text(liveQuizJSON(4))
	provider.Gate = make(chan struct{})
	o, _ := newTestOrchestrator(t, provider, Options{Coalesce: true})

	var wg sync.WaitGroup
	results := make([]Result[quiz], 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Resolve(context.Background(), o, quizRequest("same"))
		}(i)
	}

	require.Eventually(t, func() bool { return provider.Calls() == 1 }, time.Second, time.Millisecond)
	close(provider.Gate)
	wg.Wait()

	assert.Equal(t, 1, provider.Calls())
	for _, r := range results {
		assert.False(t, r.WasFallback())
		assert.Len(t, r.Value.Questions, 4)
	}
}

func TestResolveCoalescedCallOutlivesCancelledCaller(t *testing.T) {
	provider := llmtest.Text(liveQuizJSON(3))
	provider.Gate = make(chan struct{})
	o, _ := newTestOrchestrator(t, provider, Options{Coalesce: true})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan Result[quiz], 1)
	go func() { leader <- Resolve(leaderCtx, o, quizRequest("k1")) }()
	require.Eventually(t, func() bool { return provider.Calls() == 1 }, time.Second, time.Millisecond)

	follower := make(chan Result[quiz], 1)
	go func() { follower <- Resolve(context.Background(), o, quizRequest("k1")) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	left := <-leader
	assert.True(t, left.WasFallback())
	assert.ErrorIs(t, left.Err, context.Canceled)

	close(provider.Gate)
	got := <-follower
	assert.False(t, got.WasFallback(), "a cancelled caller must not downgrade others")
	assert.Len(t, got.Value.Questions, 3)
	assert.Equal(t, 1, provider.Calls())

	_, ok := o.Store().Get("k1")
	assert.True(t, ok, "the shared call still fills the cache")
}

func TestResolveReturnsCopiesOfCachedPayloads(t *testing.T) {
	o, _ := newTestOrchestrator(t, llmtest.Text(liveQuizJSON(2)), Options{})

	first := Resolve(context.Background(), o, quizRequest("k"))
	require.Equal(t, SourceLive, first.Source)
	first.Value.Questions[0].Question = "changed"

	second := Resolve(context.Background(), o, quizRequest("k"))
	require.Equal(t, SourceCache, second.Source)
	assert.Equal(t, "Q0", second.Value.Questions[0].Question)
	second.Value.Questions[1].Options[0] = "z"

	third := Resolve(context.Background(), o, quizRequest("k"))
	assert.Equal(t, "a", third.Value.Questions[1].Options[0])
}

func TestResolveCircuitBreakerOpens(t *testing.T) {
	provider := llmtest.Failing(&llm.APIError{Provider: "openai", StatusCode: 503, Err: errors.New("unavailable")})
	o, _ := newTestOrchestrator(t, provider, Options{
		Breaker: &BreakerSettings{MinRequests: 2, FailureRatio: 0.5, OpenTimeout: time.Hour},
	})

	for i := 0; i < 2; i++ {
		res := Resolve(context.Background(), o, quizRequest("k"))
		assert.Equal(t, FailureCall, res.Failure)
	}

	res := Resolve(context.Background(), o, quizRequest("k"))
	assert.Equal(t, FailureCircuitOpen, res.Failure)
	assert.Equal(t, fallbackQuiz(), res.Value)
	assert.Equal(t, 2, provider.Calls(), "open breaker must not reach the provider")
}

func TestResolveParseFailuresDoNotTripBreaker(t *testing.T) {
	provider := llmtest.Text("not json")
	o, _ := newTestOrchestrator(t, provider, Options{
		Breaker: &BreakerSettings{MinRequests: 1, FailureRatio: 0.1, OpenTimeout: time.Hour},
	})

	for i := 0; i < 3; i++ {
		res := Resolve(context.Background(), o, quizRequest("k"))
		assert.Equal(t, FailureParse, res.Failure)
	}
	assert.Equal(t, 3, provider.Calls())
}

func TestResolveWarnsWhenPromptExceedsContextWindow(t *testing.T) {
	o, logs := newTestOrchestrator(t, llmtest.Text(liveQuizJSON(1)), Options{ContextWindow: 4})
	req := quizRequest("k")
	req.Prompt = strings.Repeat("interview question ", 50)

	Resolve(context.Background(), o, req)

	assert.Equal(t, 1, logs.FilterMessage("prompt exceeds context window").Len())
}

func TestResolveEmptyKeySkipsCache(t *testing.T) {
	provider := llmtest.Text("Practice graph traversal.")
	o, _ := newTestOrchestrator(t, provider, Options{Coalesce: true})

	req := Request[string]{
		Operation: "improvementTip",
		Prompt:    "P",
		Shape:     parser.Text(),
		Fallback:  func() string { return "" },
	}

	first := Resolve(context.Background(), o, req)
	second := Resolve(context.Background(), o, req)

	assert.Equal(t, SourceLive, first.Source)
	assert.Equal(t, SourceLive, second.Source)
	assert.Equal(t, 2, provider.Calls())
	assert.Zero(t, o.Store().Stats().Count)
}
