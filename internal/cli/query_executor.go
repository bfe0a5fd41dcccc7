package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/alecf/careerprep/internal/llm"
	"github.com/alecf/careerprep/internal/spinner"
)

// Usage is the token usage accumulated over a command's live calls
type Usage struct {
	Calls        int
	TokensInput  int
	TokensOutput int
}

// progressProvider wraps a provider with a terminal spinner and records
// token usage. Cache hits never reach it, so the spinner only shows while
// a live call is in flight.
type progressProvider struct {
	llm.Provider
	model        string
	showProgress bool

	mu    sync.Mutex
	usage Usage
}

func newProgressProvider(p llm.Provider, model string, showProgress bool) *progressProvider {
	return &progressProvider{Provider: p, model: model, showProgress: showProgress}
}

// Generate implements llm.Provider
func (p *progressProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if p.showProgress {
		spin := spinner.New(fmt.Sprintf("Generating with %s...", p.model))
		spin.Start()
		defer spin.Stop()
	}

	resp, err := p.Provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.usage.Calls++
	p.usage.TokensInput += resp.TokensInput
	p.usage.TokensOutput += resp.TokensOutput
	p.mu.Unlock()

	return resp, nil
}

// Usage returns the usage recorded so far
func (p *progressProvider) Usage() Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.usage
}
