// Package spinner draws a progress indicator on stderr while a provider
// call is in flight.
package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner displays animated progress indicators. It draws nothing unless
// its output is a terminal.
type Spinner struct {
	writer  io.Writer
	enabled bool

	mu      sync.Mutex
	message string
	done    chan struct{}
	stopped chan struct{}
}

// New creates a spinner on stderr
func New(message string) *Spinner {
	return &Spinner{
		writer:  os.Stderr,
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
		message: message,
	}
}

// Start begins the spinner animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.done != nil {
		return
	}

	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.loop(s.done, s.stopped)
}

func (s *Spinner) loop(done, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.writer, "\r\033[K%s %s", frames[frame], s.message)
			s.mu.Unlock()
			frame = (frame + 1) % len(frames)
		}
	}
}

// Update changes the spinner message
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	done, stopped := s.done, s.stopped
	s.done, s.stopped = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-stopped
	fmt.Fprint(s.writer, "\r\033[K")
}
