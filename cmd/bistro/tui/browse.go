package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/bistro/pkg/console"
	"github.com/marshallshelly/bistro/pkg/runtime"
	"github.com/marshallshelly/bistro/pkg/schema"
)

// BrowseMode represents the current mode of the browse UI
type BrowseMode int

const (
	ModeLoading BrowseMode = iota
	ModeList
	ModeConfirm
	ModeDeleting
)

// DishSource loads and deletes dishes for the browser.
type DishSource interface {
	Dishes(ctx context.Context, filter schema.DishFilter) ([]schema.DishRow, error)
	DeleteDish(ctx context.Context, id int) error
}

// BrowseModel is the Bubbletea model for the dish browser
type BrowseModel struct {
	mode         BrowseMode
	source       DishSource
	filter       schema.DishFilter
	admin        bool
	view         *console.View[[]schema.DishRow]
	list         list.Model
	confirmation ConfirmationDialog
	pending      *schema.DishRow
	logs         LogView
	width        int
	height       int
}

// NewBrowseModel creates a browser whose loads derive from ctx.
func NewBrowseModel(ctx context.Context, source DishSource, filter schema.DishFilter, admin bool) BrowseModel {
	l := list.New([]list.Item{}, DishItemDelegate{}, 0, 0)
	l.Title = "Dishes"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return BrowseModel{
		mode:   ModeLoading,
		source: source,
		filter: filter,
		admin:  admin,
		view:   console.NewView[[]schema.DishRow](ctx),
		list:   l,
		logs:   NewLogView(3),
	}
}

// Messages
type dishesLoadedMsg struct {
	rows []schema.DishRow
	err  error
}

// staleLoadMsg is sent by a load that finished after a newer load started
// or after the browser closed.
type staleLoadMsg struct{}

type dishDeletedMsg struct {
	id   int
	name string
	err  error
}

// Commands
func (m BrowseModel) loadCmd() tea.Cmd {
	view, source, filter := m.view, m.source, m.filter
	return func() tea.Msg {
		rows, ok, err := view.Load(func(ctx context.Context) ([]schema.DishRow, error) {
			return source.Dishes(ctx, filter)
		})
		if !ok {
			return staleLoadMsg{}
		}
		return dishesLoadedMsg{rows: rows, err: err}
	}
}

func (m BrowseModel) deleteCmd(row schema.DishRow) tea.Cmd {
	view, source := m.view, m.source
	return func() tea.Msg {
		ctx, _ := view.Begin()
		err := source.DeleteDish(ctx, row.ID)
		return dishDeletedMsg{id: row.ID, name: row.Name, err: err}
	}
}

// Init starts the first load
func (m BrowseModel) Init() tea.Cmd {
	return m.loadCmd()
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case dishesLoadedMsg:
		m.mode = ModeList
		if msg.err != nil {
			// A failed load shows no rows.
			m.logs.AddLog("error", runtime.UserMessage(msg.err, "Failed to load dishes"))
			return m, m.list.SetItems(nil)
		}
		items := make([]list.Item, len(msg.rows))
		for i, row := range msg.rows {
			items[i] = DishItem{Row: row}
		}
		return m, m.list.SetItems(items)

	case staleLoadMsg:
		return m, nil

	case dishDeletedMsg:
		m.pending = nil
		if msg.err != nil {
			m.mode = ModeList
			m.logs.AddLog("error", runtime.UserMessage(msg.err, "Failed to delete dish"))
			return m, nil
		}
		m.logs.AddLog("success", fmt.Sprintf("Deleted %s", msg.name))
		m.mode = ModeLoading
		return m, m.loadCmd()

	case confirmedMsg:
		if m.mode != ModeConfirm || m.pending == nil {
			return m, nil
		}
		m.mode = ModeDeleting
		return m, m.deleteCmd(*m.pending)

	case canceledMsg:
		if m.mode == ModeConfirm {
			m.mode = ModeList
			m.pending = nil
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.view.Close()
			return m, tea.Quit
		}

		switch m.mode {
		case ModeConfirm:
			return m, m.confirmation.Update(msg)

		case ModeList:
			if m.list.FilterState() == list.Filtering {
				break
			}
			switch msg.String() {
			case "q":
				m.view.Close()
				return m, tea.Quit

			case "r":
				m.mode = ModeLoading
				return m, m.loadCmd()

			case "d":
				item, ok := m.list.SelectedItem().(DishItem)
				if !ok {
					return m, nil
				}
				if !m.admin {
					m.logs.AddLog("warning", "Administrator rights required")
					return m, nil
				}
				row := item.Row
				m.pending = &row
				m.confirmation = NewConfirmationDialog(
					"Delete dish",
					fmt.Sprintf("Are you sure you want to delete:\n#%d %s", row.ID, row.Name),
				)
				m.mode = ModeConfirm
				return m, nil
			}

		case ModeLoading, ModeDeleting:
			if msg.String() == "q" {
				m.view.Close()
				return m, tea.Quit
			}
			return m, nil
		}
	}

	// Update list
	if m.mode == ModeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI
func (m BrowseModel) View() string {
	switch m.mode {
	case ModeConfirm:
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			m.confirmation.View(),
		)

	case ModeLoading, ModeDeleting:
		label := "Loading dishes..."
		if m.mode == ModeDeleting {
			label = "Deleting..."
		}
		return lipgloss.Place(
			m.width,
			m.height,
			lipgloss.Center,
			lipgloss.Center,
			boxStyle.Render(infoStyle.Render(label)+"\n\n"+m.logs.View()),
		)
	}

	keys := FormatKey("↑/↓", "navigate") + " • " +
		FormatKey("/", "filter") + " • " +
		FormatKey("r", "reload")
	if m.admin {
		keys += " • " + FormatKey("d", "delete")
	}
	keys += " • " + FormatKey("q", "quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		m.logs.View(),
		helpStyle.Render(keys),
	)
}

// Rows returns the dishes currently shown
func (m BrowseModel) Rows() []schema.DishRow {
	items := m.list.Items()
	rows := make([]schema.DishRow, 0, len(items))
	for _, item := range items {
		if d, ok := item.(DishItem); ok {
			rows = append(rows, d.Row)
		}
	}
	return rows
}

// Mode returns the current mode
func (m BrowseModel) Mode() BrowseMode {
	return m.mode
}

// RunBrowseUI starts the interactive dish browser
func RunBrowseUI(ctx context.Context, source DishSource, filter schema.DishFilter, admin bool) error {
	m := NewBrowseModel(ctx, source, filter, admin)
	defer m.view.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
