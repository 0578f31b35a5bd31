package cli

import (
	"fmt"
	"strings"

	core "github.com/alexanderramin/focustrack/internal/app"
	"github.com/alexanderramin/focustrack/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// viewUpdateMsg carries a new read-model from the coordinator.
type viewUpdateMsg core.View

// viewClosedMsg signals that the coordinator stopped publishing.
type viewClosedMsg struct{}

var liveKeys = struct {
	Quit key.Binding
}{
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// liveModel renders the coordinator's read-model for track --tui.
type liveModel struct {
	updates <-chan core.View
	view    core.View
	recent  table.Model
	width   int
	ready   bool
}

func newLiveModel(updates <-chan core.View) liveModel {
	t := table.New(
		table.WithColumns([]table.Column{{Title: "RECENT", Width: 32}}),
		table.WithHeight(core.DefaultRecentAppsLimit+1),
		table.WithWidth(36),
		table.WithFocused(false),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(formatter.ColorHeader).Bold(true)
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)

	return liveModel{updates: updates, recent: t}
}

func waitForView(updates <-chan core.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-updates
		if !ok {
			return viewClosedMsg{}
		}
		return viewUpdateMsg(v)
	}
}

func (m liveModel) Init() tea.Cmd {
	return waitForView(m.updates)
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewUpdateMsg:
		m.view = core.View(msg)
		m.ready = true
		rows := make([]table.Row, 0, len(m.view.RecentApps))
		for _, name := range m.view.RecentApps {
			rows = append(rows, table.Row{name})
		}
		m.recent.SetRows(rows)
		return m, waitForView(m.updates)

	case viewClosedMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, liveKeys.Quit) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m liveModel) View() string {
	if !m.ready {
		return formatter.Dim("Waiting for focus events…") + "\n"
	}

	var b strings.Builder
	v := m.view

	switch {
	case !v.TrackingEnabled:
		b.WriteString(formatter.StyleRed.Render("● Tracking disabled: usage store unavailable"))
	case v.ActiveApp == "":
		b.WriteString(formatter.Dim("No active application"))
	default:
		b.WriteString(formatter.Bold(v.ActiveApp))
		b.WriteString("  ")
		b.WriteString(formatter.CategoryBadge(v.CategoryName, v.CategoryColor))
		b.WriteString("\n")
		b.WriteString(formatter.Truncate(v.ActiveWindow, m.titleWidth()))
		b.WriteString("\n\n")
		elapsed := formatter.StyleGreen.Render(v.ElapsedText)
		if v.Idle {
			elapsed = formatter.StyleYellow.Render(v.ElapsedText + "  paused (idle)")
		}
		b.WriteString(elapsed)
	}

	out := formatter.RenderBox("Now", b.String())
	if len(v.RecentApps) > 0 {
		out += "\n" + m.recent.View()
	}
	return out + "\n" + formatter.Dim(fmt.Sprintf("%s %s", liveKeys.Quit.Help().Key, liveKeys.Quit.Help().Desc)) + "\n"
}

func (m liveModel) titleWidth() int {
	if m.width <= 10 {
		return 60
	}
	return m.width - 8
}
