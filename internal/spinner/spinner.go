// Package spinner draws a one-line activity indicator for long CLI tasks.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Spinner redraws its current message on a single terminal line until
// stopped.
type Spinner struct {
	w    io.Writer
	mu   sync.Mutex
	msg  string
	last int

	stopOnce sync.Once
	done     chan struct{}
	cleared  chan struct{}
}

// Start begins drawing message on w.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		msg:     message,
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.loop()
	return s
}

// SetMessage replaces the text drawn next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.msg = message
	s.mu.Unlock()
}

// Stop clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.cleared
}

func (s *Spinner) loop() {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.done:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.last)) //nolint:errcheck
			s.mu.Unlock()
			close(s.cleared)
			return
		case <-ticker.C:
			s.draw(frames[i%len(frames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := frame + " " + s.msg
	pad := ""
	if n := len(line); n < s.last {
		pad = strings.Repeat(" ", s.last-n)
	}
	fmt.Fprintf(s.w, "\r%s%s", line, pad) //nolint:errcheck
	s.last = max(s.last, len(line))
}
