// Package ui holds the small terminal affordances of the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner is a minimal ANSI spinner for long-running phases (build, asset
// sync, teardown). Start and Stop are idempotent; on non-ANSI terminals it
// degrades to a single status line.
type Spinner struct {
	mu     sync.Mutex
	msg    string
	out    io.Writer
	stop   chan struct{}
	done   chan struct{}
	active bool
	ansi   bool
}

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner writes to out (os.Stdout when nil).
func NewSpinner(out io.Writer, msg string) *Spinner {
	if out == nil {
		out = os.Stdout
	}
	return &Spinner{
		msg:  msg,
		out:  out,
		ansi: os.Getenv("TERM") != "dumb" && os.Getenv("NO_COLOR") == "",
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	if !s.ansi {
		fmt.Fprintf(s.out, "%s...\n", s.msg)
		close(s.done)
		return
	}
	go s.spin()
}

func (s *Spinner) spin() {
	defer close(s.done)
	ticker := time.NewTicker(90 * time.Millisecond)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-s.stop:
			fmt.Fprint(s.out, "\r\x1b[2K")
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r\x1b[2K%s %s", frames[i%len(frames)], s.msg)
			s.mu.Unlock()
			i++
		}
	}
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	if s.ansi {
		close(s.stop)
	}
	s.mu.Unlock()
	<-s.done
}
