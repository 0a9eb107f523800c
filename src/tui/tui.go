// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package tui is an interactive status monitor for a running server,
// built on charmbracelet/bubbletea.
package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/godchecker/godchecker/src/feed"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	healthyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	whenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

const (
	refreshEvery = 30 * time.Second
	maxListed    = 10
)

type health struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Uptime   int64  `json:"uptime"`
	LastRun  *struct {
		FinishedAt time.Time `json:"finishedAt"`
		ItemCount  int       `json:"itemCount"`
		Error      string    `json:"error"`
	} `json:"lastRun"`
}

type statusMsg struct {
	health health
	items  []feed.Item
	err    error
}

type tickMsg time.Time

// Model is the bubbletea model for the status monitor.
type Model struct {
	baseURL string
	client  *http.Client

	health  health
	items   []feed.Item
	err     error
	fetched time.Time
	loading bool
	width   int
	height  int
}

// NewModel creates a monitor pointed at a running server.
func NewModel(baseURL string) Model {
	return Model{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		loading: true,
	}
}

// Init starts the first fetch and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses, refresh ticks and fetch results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.fetch()
		}

	case tickMsg:
		m.loading = true
		return m, tea.Batch(m.fetch(), tick())

	case statusMsg:
		m.loading = false
		m.fetched = time.Now()
		m.err = msg.err
		if msg.err == nil {
			m.health = msg.health
			m.items = msg.items
		}
	}

	return m, nil
}

func (m Model) fetch() tea.Cmd {
	base, client := m.baseURL, m.client
	return func() tea.Msg {
		var msg statusMsg

		if err := getJSON(client, base+"/api/healthz", &msg.health); err != nil {
			msg.err = err
			return msg
		}
		if err := getJSON(client, base+"/restrictions.json", &msg.items); err != nil {
			msg.err = err
			return msg
		}
		return msg
	}
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	// healthz reports 503 when degraded but still carries a body
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// View renders the monitor.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GODCHECKER STATUS") + "\n")
	b.WriteString(subtitleStyle.Render(m.baseURL) + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.loading && m.fetched.IsZero():
		b.WriteString(subtitleStyle.Render("Loading...") + "\n")
	default:
		b.WriteString(m.renderStatus())
		b.WriteString(m.renderItems())
	}

	b.WriteString("\n" + helpStyle.Render("r: refresh • q: quit"))

	return boxStyle.Render(b.String())
}

func (m Model) renderStatus() string {
	var b strings.Builder

	statusStyle := healthyStyle
	if m.health.Status != "healthy" {
		statusStyle = degradedStyle
	}

	b.WriteString("Status:   " + statusStyle.Render(m.health.Status) + "\n")
	b.WriteString(fmt.Sprintf("Version:  %s\n", m.health.Version))
	b.WriteString(fmt.Sprintf("Database: %s\n", m.health.Database))
	b.WriteString(fmt.Sprintf("Uptime:   %s\n", (time.Duration(m.health.Uptime) * time.Second).String()))

	if run := m.health.LastRun; run != nil {
		b.WriteString(fmt.Sprintf("Last run: %s (%d items)\n",
			run.FinishedAt.Format("2006-01-02 15:04"), run.ItemCount))
		if run.Error != "" {
			b.WriteString(errorStyle.Render("          "+run.Error) + "\n")
		}
	}

	return b.String()
}

func (m Model) renderItems() string {
	var b strings.Builder

	b.WriteString("\n" + titleStyle.Render(fmt.Sprintf("FEED (%d items)", len(m.items))) + "\n")

	if len(m.items) == 0 {
		b.WriteString(subtitleStyle.Render("no items") + "\n")
		return b.String()
	}

	shown := m.items
	if len(shown) > maxListed {
		shown = shown[:maxListed]
	}
	for _, it := range shown {
		when := it.StartAt
		if t, err := it.Start(); err == nil {
			when = t.Format("01/02 15:04")
		}
		b.WriteString(whenStyle.Render(when) + "  " + itemStyle.Render(truncate(it.Title, 48)) + "\n")
	}
	if rest := len(m.items) - len(shown); rest > 0 {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("... and %d more", rest)) + "\n")
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run launches the monitor and blocks until the user quits.
func Run(baseURL string) error {
	p := tea.NewProgram(NewModel(baseURL), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
