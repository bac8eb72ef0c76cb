package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/b4wexport/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var stageLabels = map[observability.Stage]string{
	observability.StageLoad:     "reading scene",
	observability.StageExport:   "walking data blocks",
	observability.StageAssemble: "assembling document",
	observability.StageWrite:    "writing files",
}

// Spinner animates a status line while an export runs. It implements
// [observability.PipelineHooks]: attached to the run's context it shows
// the current stage next to its message.
type Spinner struct {
	observability.NoopPipelineHooks

	w       io.Writer
	ctx     context.Context
	message string

	mu     sync.Mutex
	detail string
	width  int

	stop    chan struct{}
	exited  chan struct{}
	started bool
	once    sync.Once
}

// newSpinner creates a spinner that draws to w and stops when ctx ends.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Spinner{
		w:       w,
		ctx:     ctx,
		message: message,
		stop:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Start begins the animation. It must be called at most once.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.exited)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Stop ends the animation and clears the line. Calling it again, or
// without Start, does nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.exited
		}
		s.clear()
	})
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the context ended the spinner.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// OnStageStart shows the stage that begins.
func (s *Spinner) OnStageStart(_ context.Context, stage observability.Stage, _ string) {
	label, ok := stageLabels[stage]
	if !ok {
		label = string(stage)
	}
	s.mu.Lock()
	s.detail = label
	s.mu.Unlock()
}

// status returns the plain text of the line.
func (s *Spinner) status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == "" {
		return s.message
	}
	return s.message + " · " + s.detail
}

func (s *Spinner) draw(frame string) {
	text := s.status()
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := ""
	if n := utf8.RuneCountInString(text) + 2; n < s.width {
		pad = strings.Repeat(" ", s.width-n)
	} else {
		s.width = n
	}
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(text), pad)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}
