// Package generate resolves generated payloads through a cache, a live
// provider call, and a caller-supplied fallback, in that order.
//
// Resolve never fails: quota refusals, call errors, and unparseable output
// all end in the request's fallback, which is returned but never cached.
// Only validated live payloads are written to the cache.
package generate

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alecf/careerprep/internal/cache"
	"github.com/alecf/careerprep/internal/llm"
	"github.com/alecf/careerprep/internal/parser"
)

// Source tells where a resolved payload came from
type Source string

const (
	SourceCache    Source = "cache"
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// FailureKind classifies why a request fell back
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureQuota       FailureKind = "quota"
	FailureCall        FailureKind = "call-error"
	FailureParse       FailureKind = "parse-error"
	FailureCircuitOpen FailureKind = "circuit-open"
)

// Request describes one generation need of a call site
type Request[T any] struct {
	// Operation names the call site in logs (quiz, coverLetter, ...)
	Operation string

	// Key is the cache key, normally cache.DeriveKey(Operation, params...).
	// An empty key skips the cache and coalescing entirely.
	Key string

	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float64

	// Shape parses and validates the raw model output
	Shape parser.Shape[T]

	// Fallback must be pure and must not fail
	Fallback func() T
}

// Result is a resolved payload with its provenance
type Result[T any] struct {
	// Value is owned by the caller; cached payloads are returned as copies
	Value   T
	Source  Source
	Failure FailureKind
	Err     error         // the cause of a fallback, nil otherwise
	Usage   *llm.Response // token usage of a live call, nil otherwise
}

// WasFallback reports whether Value came from the fallback provider
func (r Result[T]) WasFallback() bool {
	return r.Source == SourceFallback
}

// BreakerSettings configures the circuit breaker around provider calls
type BreakerSettings struct {
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

// Options configures an Orchestrator
type Options struct {
	Model         string
	ContextWindow int

	// Coalesce shares one in-flight provider call among concurrent
	// misses for the same key
	Coalesce bool

	// Breaker enables a circuit breaker when non-nil
	Breaker *BreakerSettings

	Logger *zap.Logger
}

// Orchestrator mediates every call to the text-generation provider
type Orchestrator struct {
	store         *cache.Store
	provider      llm.Provider
	model         string
	contextWindow int
	logger        *zap.Logger
	group         *singleflight.Group
	breaker       *gobreaker.CircuitBreaker
}

// New creates an orchestrator over an explicit cache store and provider
func New(store *cache.Store, provider llm.Provider, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		store:         store,
		provider:      provider,
		model:         opts.Model,
		contextWindow: opts.ContextWindow,
		logger:        logger,
	}

	if opts.Coalesce {
		o.group = &singleflight.Group{}
	}

	if opts.Breaker != nil {
		o.breaker = newBreaker(provider.Name(), *opts.Breaker, logger)
	}

	return o
}

// Store returns the cache store backing the orchestrator
func (o *Orchestrator) Store() *cache.Store {
	return o.store
}

// Provider returns the provider backing the orchestrator
func (o *Orchestrator) Provider() llm.Provider {
	return o.provider
}

// Model returns the configured model name
func (o *Orchestrator) Model() string {
	return o.model
}

// failure carries the classification of a miss-path error
type failure struct {
	kind FailureKind
	err  error
}

func (f *failure) Error() string { return f.err.Error() }

func (f *failure) Unwrap() error { return f.err }

// live is the value produced by a successful miss path
type live[T any] struct {
	value T
	usage *llm.Response
	hit   bool
}

// Resolve produces a payload for req, preferring the cache, then a live
// provider call, then the fallback. It never returns an error.
func Resolve[T any](ctx context.Context, o *Orchestrator, req Request[T]) Result[T] {
	log := o.logger.With(zap.String("operation", req.Operation), zap.String("key", shortKey(req.Key)))

	if req.Key != "" {
		if v, ok := lookup[T](o.store, req.Key); ok {
			log.Debug("cache hit")
			return Result[T]{Value: detach(req.Shape, v, log), Source: SourceCache}
		}
	}

	var (
		res    live[T]
		err    error
		shared bool
	)
	if o.group != nil && req.Key != "" {
		res, shared, err = coalesce(ctx, o, req)
	} else {
		res, err = generate(ctx, o, req)
	}

	if err != nil {
		kind := FailureCall
		var f *failure
		if errors.As(err, &f) {
			kind = f.kind
			err = f.err
		}
		log.Warn("generation failed, using fallback",
			zap.String("failure", string(kind)),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		return Result[T]{Value: req.Fallback(), Source: SourceFallback, Failure: kind, Err: err}
	}

	value := res.value
	if req.Key != "" {
		value = detach(req.Shape, value, log)
	}

	if res.hit {
		return Result[T]{Value: value, Source: SourceCache}
	}

	log.Debug("generated", zap.Bool("shared", shared))
	return Result[T]{Value: value, Source: SourceLive, Usage: res.usage}
}

// coalesce shares one miss path among concurrent callers of the same key.
// The shared call is detached from any single caller's cancellation; each
// caller stops waiting when its own context ends.
func coalesce[T any](ctx context.Context, o *Orchestrator, req Request[T]) (live[T], bool, error) {
	ch := o.group.DoChan(req.Key, func() (any, error) {
		return generate(context.WithoutCancel(ctx), o, req)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return live[T]{}, r.Shared, r.Err
		}
		res, ok := r.Val.(live[T])
		if !ok {
			// Another payload type shares this key; do not reuse it
			res, err := generate(ctx, o, req)
			return res, r.Shared, err
		}
		return res, r.Shared, nil
	case <-ctx.Done():
		return live[T]{}, false, ctx.Err()
	}
}

// detach copies a payload that the cache or other callers also hold
func detach[T any](shape parser.Shape[T], v T, log *zap.Logger) T {
	cp, err := shape.Copy(v)
	if err != nil {
		log.Warn("failed to copy cached payload", zap.Error(err))
		return v
	}
	return cp
}

// lookup reads a typed payload from the store. A payload of another type
// under the same key is treated as a miss.
func lookup[T any](store *cache.Store, key string) (T, bool) {
	var zero T
	v, ok := store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// generate runs the miss path: call, clean, parse, cache
func generate[T any](ctx context.Context, o *Orchestrator, req Request[T]) (live[T], error) {
	// A coalesced call may start after another caller already filled the key
	if o.group != nil && req.Key != "" {
		if v, ok := lookup[T](o.store, req.Key); ok {
			return live[T]{value: v, hit: true}, nil
		}
	}

	o.checkContextWindow(req.Operation, req.SystemPrompt+"\n"+req.Prompt)

	resp, err := o.call(ctx, llm.Request{
		Model:         o.model,
		SystemPrompt:  req.SystemPrompt,
		Prompt:        req.Prompt,
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		ContextWindow: o.contextWindow,
		JSON:          req.Shape.Structured(),
	})
	if err != nil {
		return live[T]{}, err
	}

	payload, err := req.Shape.Parse(parser.Clean(req.Shape, resp.Text))
	if err != nil {
		o.logger.Debug("unparseable response",
			zap.String("operation", req.Operation),
			zap.String("shape", req.Shape.Name()),
			zap.String("response", truncate(resp.Text, 500)),
		)
		return live[T]{}, &failure{kind: FailureParse, err: err}
	}

	if req.Key != "" {
		o.store.Set(req.Key, payload)
	}
	return live[T]{value: payload, usage: resp}, nil
}

// call invokes the provider, through the circuit breaker when configured
func (o *Orchestrator) call(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if o.breaker == nil {
		resp, err := o.provider.Generate(ctx, req)
		if err != nil {
			return nil, classify(err)
		}
		return resp, nil
	}

	v, err := o.breaker.Execute(func() (interface{}, error) {
		return o.provider.Generate(ctx, req)
	})
	if err != nil {
		return nil, classify(err)
	}
	return v.(*llm.Response), nil
}

// classify maps a call-layer error to a failure kind
func classify(err error) *failure {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &failure{kind: FailureCircuitOpen, err: err}
	case llm.IsQuotaError(err):
		return &failure{kind: FailureQuota, err: err}
	default:
		return &failure{kind: FailureCall, err: err}
	}
}

// checkContextWindow warns when the prompt alone exceeds the context window
func (o *Orchestrator) checkContextWindow(operation, prompt string) {
	if o.contextWindow <= 0 {
		return
	}
	tokens, _ := llm.CountTokens(prompt)
	if tokens > o.contextWindow {
		o.logger.Warn("prompt exceeds context window",
			zap.String("operation", operation),
			zap.Int("tokens", tokens),
			zap.Int("context_window", o.contextWindow),
		)
	}
}

// shortKey abbreviates a hashed cache key for log output
func shortKey(key string) string {
	return truncate(key, 12)
}

// truncate truncates a string to maxLen characters with ellipsis
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
