package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("open out.json: permission denied")
	err := Wrap(ErrCodePermission, cause, "Permission denied")

	if err.Code != ErrCodePermission {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodePermission)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeNoScene, "test"),
			code:     ErrCodeNoScene,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodePath,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodePermission, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodePermission,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("export: %w", New(ErrCodeCrossVolume, "inner")),
			code:     ErrCodeCrossVolume,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodePath, "test"),
			expected: ErrCodePath,
		},
		{
			name:     "export error",
			err:      NewExportError("boom", "Cube", "Object", ""),
			expected: ErrCodeExport,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeNoScene, "No exported scene found. Can't perform export."),
			expected: "No exported scene found. Can't perform export.",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsFatalFile(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeNoScene, "x"), true},
		{New(ErrCodeCrossVolume, "x"), true},
		{New(ErrCodePermission, "x"), true},
		{New(ErrCodePath, "x"), true},
		{New(ErrCodeWrite, "x"), true},
		{New(ErrCodeInvalidInput, "x"), false},
		{NewExportError("x", "Cube", "Object", ""), false},
		{errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(GetCode(tt.err)), func(t *testing.T) {
			if got := IsFatalFile(tt.err); got != tt.want {
				t.Errorf("IsFatalFile(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExportError(t *testing.T) {
	err := NewExportError("Missing particles dupli weights in particle system.",
		"Grass", "ParticleSettings", "Check dupli weights")

	want := "Export error: Grass: Missing particles dupli weights in particle system."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var target *ExportError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &target) {
		t.Fatal("errors.As did not find *ExportError")
	}
	if target.ComponentType != "ParticleSettings" || target.Comment != "Check dupli weights" {
		t.Errorf("unexpected fields: %+v", target)
	}
}
