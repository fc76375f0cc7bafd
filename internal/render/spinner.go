package render

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/ingo/debtmap-go/internal/workflow"
)

// Spinner displays an animated spinner on stderr while a workflow phase
// runs, suppressed automatically when stderr is not a TTY (piped output,
// CI). UpdatePhase renders the running phase name directly rather than
// taking a pre-formatted string, so the workflow's own phase vocabulary
// (CallGraphBuilding, CoverageLoading, ScoringInProgress, ...) is what
// shows up on screen instead of a caller-assembled label.
type Spinner struct {
	mu      sync.Mutex
	frames  []string
	current int
	message string
	active  bool
	isTTY   bool
	writer  *os.File
	ticker  *time.Ticker
	done    chan struct{}
	started time.Time
}

// NewSpinner creates a new Spinner that writes to the given file (typically os.Stderr).
func NewSpinner(w *os.File) *Spinner {
	return &Spinner{
		frames: []string{"|", "/", "-", "\\"},
		writer: w,
		isTTY:  isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()),
		done:   make(chan struct{}),
	}
}

// Start begins displaying the spinner with the given message.
// If the writer is not a TTY, Start is a no-op.
func (s *Spinner) Start(message string) {
	if !s.isTTY {
		return
	}

	s.mu.Lock()
	s.active = true
	s.message = message
	s.started = time.Now()
	s.mu.Unlock()

	const spinnerInterval = 100 * time.Millisecond
	s.ticker = time.NewTicker(spinnerInterval)
	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.active {
					s.mu.Unlock()
					return
				}
				frame := s.frames[s.current%len(s.frames)]
				msg := s.message
				s.current++
				s.mu.Unlock()
				fmt.Fprintf(s.writer, "\r%s %s", frame, msg)
			}
		}
	}()
}

// Update changes the spinner message. The next tick will display the new message.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// UpdatePhase is the Environment.Progress shape the analysis pipeline
// drives the spinner through: one workflow.Phase transition at a time,
// each with its own human-readable message.
func (s *Spinner) UpdatePhase(phase workflow.Phase, message string) {
	s.Update(fmt.Sprintf("%s: %s", phase, message))
}

// Stop halts the spinner and optionally prints a final message, suffixed
// with the elapsed time since Start so a long analysis run reports how
// long it took. If the writer is not a TTY, Stop is a no-op.
func (s *Spinner) Stop(finalMessage string) {
	if !s.isTTY {
		return
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	elapsed := time.Since(s.started)
	s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if finalMessage != "" {
		fmt.Fprintf(s.writer, "\r%s (%.1fs)\n", finalMessage, elapsed.Seconds())
	} else {
		fmt.Fprintf(s.writer, "\r\033[K")
	}
}
