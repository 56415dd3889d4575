package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yetamrra/sane-airscan-wsd/internal/device"
)

// refreshInterval is the pause between device table snapshots. The listing
// itself already blocks while the table settles, so the interval only
// paces an otherwise idle screen.
const refreshInterval = 2 * time.Second

// Messages for async operations
type listResultMsg struct {
	infos []device.Info
}
type refreshTickMsg struct{}

// watchKeyMap defines key bindings for the watch screen
type watchKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Quit},
	}
}

// WatchModel is the live device-table screen. It repeatedly snapshots the
// manager's ready devices and renders them as cards, with a spinner while
// the first listing is still settling.
type WatchModel struct {
	mgr *device.Manager

	infos       []device.Info
	refreshing  bool
	lastRefresh time.Time

	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    watchKeyMap
}

// NewWatchModel creates a watch screen over the given manager
func NewWatchModel(mgr *device.Manager) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	keys := watchKeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	return WatchModel{
		mgr:        mgr,
		refreshing: true,
		Spinner:    s,
		Help:       help.New(),
		Keys:       keys,
	}
}

// Init starts the first device listing and the spinner
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.listDevices, m.Spinner.Tick)
}

// Update handles messages and updates the model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Refresh):
			if !m.refreshing {
				m.refreshing = true
				return m, m.listDevices
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case listResultMsg:
		m.infos = msg.infos
		m.refreshing = false
		m.lastRefresh = time.Now()
		return m, tea.Tick(refreshInterval, func(time.Time) tea.Msg {
			return refreshTickMsg{}
		})

	case refreshTickMsg:
		if !m.refreshing {
			m.refreshing = true
			return m, m.listDevices
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the watch screen
func (m WatchModel) View() string {
	width := m.Width
	if width == 0 {
		width = GetTerminalWidth()
	}

	var b strings.Builder

	title := "SCANNER WATCH"
	if m.refreshing && len(m.infos) == 0 {
		title = fmt.Sprintf("%s SEARCHING FOR SCANNERS", m.Spinner.View())
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	if !m.lastRefresh.IsZero() {
		b.WriteString(SubtitleStyle.Render(
			fmt.Sprintf("last update %s", m.lastRefresh.Format("15:04:05"))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.infos) == 0 && !m.refreshing {
		b.WriteString("  ")
		b.WriteString(WarningStyle.Render("⚠ No scanners found on your network"))
		b.WriteString("\n\n")
		b.WriteString(TroubleshootingStyle.Render(strings.Join([]string{
			"  Troubleshooting:",
			"    • Ensure the scanner is powered on and on the same network",
			"    • Check that the scanner advertises eSCL (AirScan/AirPrint)",
			"    • Add a static device entry to the config file if mDNS is blocked",
		}, "\n")))
		b.WriteString("\n")
	}

	for _, info := range m.infos {
		b.WriteString(m.renderDevice(info, width))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.Help.View(m.Keys)))
	return b.String()
}

// renderDevice renders one device card
func (m WatchModel) renderDevice(info device.Info, width int) string {
	var content strings.Builder

	content.WriteString(DeviceNameStyle.Render(info.Name))
	content.WriteString("  ")
	content.WriteString(ReadyStyle.Render("Ready"))
	content.WriteString("\n")
	content.WriteString(DeviceDetailStyle.Render(
		fmt.Sprintf("Vendor: %-12s Model: %s", info.Vendor, info.Model)))
	content.WriteString("\n")
	content.WriteString(DeviceDetailStyle.Render(
		fmt.Sprintf("Type:   %s", info.Type)))

	cardWidth := width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	return CardStyle.Width(cardWidth).Render(content.String())
}

// listDevices is a command that snapshots the manager's ready devices.
// Manager.List blocks until the table settles or its timeout elapses, so
// this runs as an async command rather than inside Update.
func (m WatchModel) listDevices() tea.Msg {
	return listResultMsg{infos: m.mgr.List()}
}

// Run launches the watch screen and blocks until the user quits
func Run(mgr *device.Manager) error {
	p := tea.NewProgram(NewWatchModel(mgr))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch screen error: %w", err)
	}
	return nil
}
