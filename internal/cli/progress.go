package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

// Status writes one-line status messages, colored when w is a terminal.
type Status struct {
	w        io.Writer
	colorize bool
}

// NewStatus creates a Status writing to w.
func NewStatus(w io.Writer) *Status {
	return &Status{w: w, colorize: isTerminal(w)}
}

func (s *Status) line(color, mark, message string) {
	if s.colorize {
		fmt.Fprintf(s.w, "%s%s%s %s\n", color, mark, ColorReset, message)
		return
	}
	fmt.Fprintf(s.w, "%s %s\n", mark, message)
}

// Success prints a success message.
func (s *Status) Success(message string) { s.line(ColorGreen, "✓", message) }

// Error prints an error message.
func (s *Status) Error(message string) { s.line(ColorRed, "✗", message) }

// Warning prints a warning message.
func (s *Status) Warning(message string) { s.line(ColorYellow, "⚠", message) }

// Info prints an info message.
func (s *Status) Info(message string) { s.line(ColorBlue, "ℹ", message) }

// Spinner shows that the client is waiting, e.g. for a transaction to be
// included in a block.
type Spinner struct {
	frames   []string
	current  int
	prefix   string
	started  time.Time
	mu       sync.Mutex
	writer   io.Writer
	active   bool
	colorize bool
	done     chan struct{}
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, prefix string) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		prefix:   prefix,
		writer:   w,
		colorize: isTerminal(w),
	}
}

// Start starts the spinner. Spinners on non-terminal writers stay silent.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active || !s.colorize {
		return
	}
	s.active = true
	s.started = time.Now()
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.current = (s.current + 1) % len(s.frames)
				s.mu.Unlock()
			case <-done:
				return
			}
		}
	}(s.done)
}

// Stop stops the spinner and clears its line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	close(s.done)
	fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", 80)+"\r")
}

func (s *Spinner) render() {
	fmt.Fprintf(s.writer, "\r%s%s%s %s (%s)", ColorCyan, s.frames[s.current], ColorReset,
		s.prefix, FormatDuration(time.Since(s.started)))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
