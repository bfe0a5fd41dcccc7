// Package llmtest provides a scriptable llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/alecf/careerprep/internal/llm"
)

// Reply is one scripted outcome of a Generate call
type Reply struct {
	Text string
	Err  error
}

// Provider returns scripted replies in order; the last reply repeats once
// the script is exhausted. It records every request it receives.
type Provider struct {
	mu       sync.Mutex
	replies  []Reply
	requests []llm.Request

	// Gate, when set, blocks each call until it is closed or receives.
	Gate chan struct{}
}

// New creates a fake provider with the given script
func New(replies ...Reply) *Provider {
	return &Provider{replies: replies}
}

// Text is shorthand for a provider that always returns text
func Text(text string) *Provider {
	return New(Reply{Text: text})
}

// Failing is shorthand for a provider that always returns err
func Failing(err error) *Provider {
	return New(Reply{Err: err})
}

// Generate implements llm.Provider
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	idx := len(p.requests) - 1
	p.mu.Unlock()

	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.replies) == 0 {
		return &llm.Response{Provider: p.Name(), Model: req.Model}, nil
	}
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	reply := p.replies[idx]
	if reply.Err != nil {
		return nil, reply.Err
	}

	return &llm.Response{
		Text:         reply.Text,
		TokensInput:  len(req.Prompt) / 4,
		TokensOutput: len(reply.Text) / 4,
		Model:        req.Model,
		Provider:     p.Name(),
	}, nil
}

// Name implements llm.Provider
func (p *Provider) Name() string {
	return "fake"
}

// Calls returns the number of Generate calls received
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Requests returns a copy of the received requests
func (p *Provider) Requests() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.requests...)
}
