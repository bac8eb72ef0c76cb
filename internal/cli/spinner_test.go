package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/b4wexport/pkg/observability"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Exporting level.yaml")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Exporting level.yaml") {
		t.Errorf("output %q should contain the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("Stop should clear the line")
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerFollowsStages(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Exporting")
	ctx := observability.WithPipelineHooks(context.Background(), s)

	tests := []struct {
		stage observability.Stage
		want  string
	}{
		{observability.StageLoad, "Exporting · reading scene"},
		{observability.StageExport, "Exporting · walking data blocks"},
		{observability.StageWrite, "Exporting · writing files"},
		{observability.Stage("custom"), "Exporting · custom"},
	}
	for _, tt := range tests {
		done := observability.Track(ctx, tt.stage, "x")
		if got := s.status(); got != tt.want {
			t.Errorf("status = %q, want %q", got, tt.want)
		}
		done(0, 0, nil)
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &bytes.Buffer{}, "Exporting")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("spinner should report cancellation")
	}
}

func TestSpinnerStop(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		s := newSpinner(context.Background(), &bytes.Buffer{}, "x")
		s.Start()
		s.Stop()
		s.Stop()
	})

	t.Run("without start", func(t *testing.T) {
		var buf bytes.Buffer
		s := newSpinner(context.Background(), &buf, "x")
		s.Stop()
		if buf.Len() != 0 {
			t.Errorf("unstarted spinner wrote %q", buf.String())
		}
	})

	t.Run("nil context", func(t *testing.T) {
		s := newSpinner(nil, &bytes.Buffer{}, "x")
		s.Start()
		s.Stop()
	})
}
