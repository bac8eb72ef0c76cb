package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/b4wexport/pkg/messages"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Message entries
// =============================================================================

// messageEntry is one recorded message with its level.
type messageEntry struct {
	Level messages.Level
	messages.Message
}

// entries flattens warnings and errors, errors first.
func entries(warnings, errs []messages.Message) []messageEntry {
	out := make([]messageEntry, 0, len(warnings)+len(errs))
	for _, m := range errs {
		out = append(out, messageEntry{Level: messages.LevelError, Message: m})
	}
	for _, m := range warnings {
		out = append(out, messageEntry{Level: messages.LevelWarning, Message: m})
	}
	return out
}

func levelIcon(l messages.Level) string {
	if l == messages.LevelError {
		return styleIconError.Render(iconError)
	}
	return styleIconWarning.Render(iconWarning)
}

// =============================================================================
// MessageListModel - Interactive message browser
// =============================================================================

// messageFilter restricts the browser to one level.
type messageFilter int

const (
	filterAll messageFilter = iota
	filterWarnings
	filterErrors
)

// MessageListModel is the bubbletea model for browsing recorded messages.
type MessageListModel struct {
	Title   string
	All     []messageEntry
	Visible []messageEntry
	Cursor  int
	Height  int
	Offset  int
	Filter  messageFilter
}

// NewMessageListModel creates a browser over the messages of one document.
func NewMessageListModel(title string, warnings, errs []messages.Message) MessageListModel {
	m := MessageListModel{
		Title:  title,
		All:    entries(warnings, errs),
		Height: 15,
	}
	m.applyFilter()
	return m
}

func (m *MessageListModel) applyFilter() {
	m.Visible = nil
	for _, e := range m.All {
		switch {
		case m.Filter == filterWarnings && e.Level != messages.LevelWarning:
		case m.Filter == filterErrors && e.Level != messages.LevelError:
		default:
			m.Visible = append(m.Visible, e)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m MessageListModel) Init() tea.Cmd {
	return nil
}

func (m MessageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "a":
			m.Filter = filterAll
			m.applyFilter()
		case "w":
			m.Filter = filterWarnings
			m.applyFilter()
		case "e":
			m.Filter = filterErrors
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m MessageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  a all  w warnings  e errors  q quit"))
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no messages"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	for i := m.Offset; i < end; i++ {
		e := m.Visible[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + levelIcon(e.Level) + " " + style.Render(truncate(e.Text, 100)))
		b.WriteString("\n")
	}

	sel := m.Visible[m.Cursor]
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %s · scope %s", m.Cursor+1, len(m.Visible), sel.Level, sel.Scope)))
	b.WriteString("\n")
	if len([]rune(sel.Text)) > 100 {
		b.WriteString("  " + listNormalStyle.Render(sel.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Message table
// =============================================================================

// messageTable renders messages as a bordered table for non-interactive
// output.
func messageTable(warnings, errs []messages.Message) string {
	all := entries(warnings, errs)
	rows := make([][]string, 0, len(all))
	for _, e := range all {
		rows = append(rows, []string{e.Level.String(), string(e.Scope), e.Text})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Level", "Scope", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col != 0 {
				return base
			}
			if all[row].Level == messages.LevelError {
				return base.Foreground(colorRed)
			}
			return base.Foreground(colorYellow)
		})
	return t.Render()
}

// =============================================================================
// Helpers
// =============================================================================

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
