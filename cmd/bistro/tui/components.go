package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/bistro/pkg/schema"
)

// confirmedMsg and canceledMsg report the answer of a ConfirmationDialog.
type confirmedMsg struct{}

type canceledMsg struct{}

func confirmed() tea.Msg { return confirmedMsg{} }

func canceled() tea.Msg { return canceledMsg{} }

// ConfirmationDialog represents a yes/no confirmation dialog. The answer
// arrives as a message so the owning model decides what happens next.
type ConfirmationDialog struct {
	Title       string
	Message     string
	YesSelected bool
}

// NewConfirmationDialog creates a new confirmation dialog with No selected
func NewConfirmationDialog(title, message string) ConfirmationDialog {
	return ConfirmationDialog{
		Title:       title,
		Message:     message,
		YesSelected: false,
	}
}

// Update handles confirmation dialog updates
func (d *ConfirmationDialog) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "left", "h":
		d.YesSelected = true
	case "right", "l":
		d.YesSelected = false
	case "y":
		return confirmed
	case "n", "esc", "q":
		return canceled
	case "enter":
		if d.YesSelected {
			return confirmed
		}
		return canceled
	}
	return nil
}

// View renders the confirmation dialog
func (d ConfirmationDialog) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")

	if d.YesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(FormatKey("←/→", "navigate") + " • " + FormatKey("enter", "confirm") + " • " + FormatKey("esc", "cancel")))

	return boxStyle.Render(b.String())
}

// DishItem is a dish row in the browse list
type DishItem struct {
	Row schema.DishRow
}

func (i DishItem) FilterValue() string { return i.Row.Name }
func (i DishItem) Title() string {
	return fmt.Sprintf("#%d %s", i.Row.ID, i.Row.Name)
}
func (i DishItem) Description() string {
	parts := []string{i.Row.SeasonName, i.Row.CountryName, i.Row.TypeName, i.Row.ChiefName}
	return mutedStyle.Render(strings.Join(parts, " · ")) + "  " + FormatRating(i.Row.AvgRating)
}

// DishItemDelegate renders dish list items
type DishItemDelegate struct{}

func (d DishItemDelegate) Height() int                             { return 2 }
func (d DishItemDelegate) Spacing() int                            { return 1 }
func (d DishItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d DishItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(DishItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title() + "\n  " + i.Description())
	}

	_, _ = fmt.Fprint(w, s)
}

// LogEntry is one notification shown under the list
type LogEntry struct {
	Level   string
	Message string
}

// LogView keeps the most recent notifications
type LogView struct {
	Logs   []LogEntry
	MaxLen int
}

// NewLogView creates a new log view
func NewLogView(maxLen int) LogView {
	return LogView{
		Logs:   make([]LogEntry, 0),
		MaxLen: maxLen,
	}
}

// AddLog adds a log entry, dropping the oldest past MaxLen
func (l *LogView) AddLog(level, message string) {
	l.Logs = append(l.Logs, LogEntry{Level: level, Message: message})
	if len(l.Logs) > l.MaxLen {
		l.Logs = l.Logs[1:]
	}
}

// Last returns the newest entry
func (l LogView) Last() (LogEntry, bool) {
	if len(l.Logs) == 0 {
		return LogEntry{}, false
	}
	return l.Logs[len(l.Logs)-1], true
}

// View renders the log view
func (l LogView) View() string {
	if len(l.Logs) == 0 {
		return ""
	}

	var b strings.Builder
	for _, entry := range l.Logs {
		b.WriteString(FormatLevel(entry.Level))
		b.WriteString(" ")
		b.WriteString(entry.Message)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
