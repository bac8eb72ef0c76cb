// Package messages collects the warnings and errors an export records.
//
// Messages are data, not log lines: they end up in the exported document
// under b4w_export_warnings and b4w_export_errors, and strict mode refuses to
// write artifacts when any were recorded.
package messages

// Scope says which exports a message is shown for.
type Scope string

const (
	Primary   Scope = "PRIMARY"
	Secondary Scope = "SECONDARY"
	All       Scope = "ALL"
)

// Message is one recorded warning or error.
type Message struct {
	Text  string `json:"text"`
	Scope Scope  `json:"type"`
}

// Sink accumulates messages in the order they were recorded.
//
// The zero value is an empty sink ready to use.
type Sink struct {
	warnings []Message
	errors   []Message
	observe  func(level Level, m Message)
}

// Level separates warnings from errors.
type Level uint8

const (
	LevelWarning Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// Observe registers fn to be called for every message as it is recorded.
func (s *Sink) Observe(fn func(level Level, m Message)) { s.observe = fn }

// Warn records a warning with scope ALL.
func (s *Sink) Warn(text string) { s.WarnScope(text, All) }

// WarnScope records a warning with the given scope.
func (s *Sink) WarnScope(text string, scope Scope) {
	m := Message{Text: text, Scope: scope}
	s.warnings = append(s.warnings, m)
	if s.observe != nil {
		s.observe(LevelWarning, m)
	}
}

// Err records an error with scope ALL.
func (s *Sink) Err(text string) { s.ErrScope(text, All) }

// ErrScope records an error with the given scope.
func (s *Sink) ErrScope(text string, scope Scope) {
	m := Message{Text: text, Scope: scope}
	s.errors = append(s.errors, m)
	if s.observe != nil {
		s.observe(LevelError, m)
	}
}

// Warnings returns the recorded warnings. The result is never nil.
func (s *Sink) Warnings() []Message {
	return append(make([]Message, 0, len(s.warnings)), s.warnings...)
}

// Errors returns the recorded errors. The result is never nil.
func (s *Sink) Errors() []Message {
	return append(make([]Message, 0, len(s.errors)), s.errors...)
}

// Len returns the total number of recorded messages.
func (s *Sink) Len() int { return len(s.warnings) + len(s.errors) }

// Empty reports whether nothing was recorded.
func (s *Sink) Empty() bool { return s.Len() == 0 }

// Reset drops every message.
func (s *Sink) Reset() {
	s.warnings = nil
	s.errors = nil
}
