package cli

import (
	"io"
	"testing"

	"github.com/matzehuels/b4wexport/pkg/pipeline"
)

func TestExportOptionsPrecedence(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name   string
		config pipeline.Config
		flags  map[string]string
		want   pipeline.Options
	}{
		{
			name: "defaults",
			want: pipeline.Options{},
		},
		{
			name:   "config",
			config: pipeline.Config{FormatVersion: "5.07", Pretty: &yes, WritePacked: &no},
			want:   pipeline.Options{FormatVersion: "5.07", Pretty: true, NoPacked: true},
		},
		{
			name:   "flags win",
			config: pipeline.Config{FormatVersion: "5.07", Strict: &yes, Pretty: &yes},
			flags:  map[string]string{"format-version": "6.02", "strict": "false"},
			want:   pipeline.Options{FormatVersion: "6.02", Strict: false, Pretty: true},
		},
		{
			name:   "flag over config",
			config: pipeline.Config{WritePacked: &yes},
			flags:  map[string]string{"no-packed": "true", "output": "out.json"},
			want:   pipeline.Options{NoPacked: true, Output: "out.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.config = &tt.config

			cmd := c.exportCommand()
			for name, value := range tt.flags {
				if err := cmd.Flags().Set(name, value); err != nil {
					t.Fatalf("Set(%q): %v", name, err)
				}
			}
			got := c.exportOptions(cmd, "scene.yaml")
			if got.Input != "scene.yaml" {
				t.Errorf("Input = %q", got.Input)
			}
			if got.Output != tt.want.Output {
				t.Errorf("Output = %q, want %q", got.Output, tt.want.Output)
			}
			if got.FormatVersion != tt.want.FormatVersion {
				t.Errorf("FormatVersion = %q, want %q", got.FormatVersion, tt.want.FormatVersion)
			}
			if got.Strict != tt.want.Strict || got.Pretty != tt.want.Pretty || got.NoPacked != tt.want.NoPacked {
				t.Errorf("flags = strict %v pretty %v noPacked %v, want %v %v %v",
					got.Strict, got.Pretty, got.NoPacked, tt.want.Strict, tt.want.Pretty, tt.want.NoPacked)
			}
		})
	}
}
