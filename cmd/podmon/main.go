// Command podmon is a terminal dashboard over the fleet gateway's gRPC
// surface: a live table of pod mode/connection state and host resource
// usage, polled on a tea.Tick the way the teacher's internal/cli/ui.Model
// polls updateResourceData/checkServerHealth.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"domes/pkg/domespb"
)

const pollPeriod = time.Second

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

func newPodTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "MAC", Width: 18},
		{Title: "Mode", Width: 10},
		{Title: "Conn", Width: 6},
		{Title: "Last seen", Width: 10},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(10))

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("#9CA3AF"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#111827")).Background(lipgloss.Color("#2563EB"))
	t.SetStyles(styles)

	return t
}

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "fleet gateway gRPC address")
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Printf("podmon: dial %s: %v\n", *addr, err)
		return
	}
	defer conn.Close()

	client := domespb.NewFleetServiceClient(conn)
	m := newModel(client, *addr)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Printf("podmon: %v\n", err)
	}
}

type podsMsg struct {
	pods []*domespb.PodSummary
	err  error
}

type hostStatsMsg struct {
	stats *domespb.GetHostStatsResponse
	err   error
}

// model is podmon's bubbletea state: the last successful poll of each
// endpoint, kept separately so one failing call doesn't blank the other.
type model struct {
	client domespb.FleetServiceClient
	addr   string

	table     table.Model
	hostStats *domespb.GetHostStatsResponse
	lastErr   string
	width     int
	height    int
}

func newModel(client domespb.FleetServiceClient, addr string) model {
	return model{client: client, addr: addr, table: newPodTable(), width: 80, height: 24}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.pollPods(), m.pollHostStats())
}

func (m model) pollPods() tea.Cmd {
	return tea.Tick(pollPeriod, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollPeriod)
		defer cancel()
		resp, err := m.client.ListPods(ctx, &domespb.ListPodsRequest{})
		if err != nil {
			return podsMsg{err: err}
		}
		return podsMsg{pods: resp.Pods}
	})
}

func (m model) pollHostStats() tea.Cmd {
	return tea.Tick(pollPeriod, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollPeriod)
		defer cancel()
		resp, err := m.client.GetHostStats(ctx, &domespb.GetHostStatsRequest{})
		if err != nil {
			return hostStatsMsg{err: err}
		}
		return hostStatsMsg{stats: resp}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case podsMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		} else {
			m.lastErr = ""
			m.table.SetRows(podRows(msg.pods))
		}
		return m, m.pollPods()

	case hostStatsMsg:
		if msg.err == nil {
			m.hostStats = msg.stats
		}
		return m, m.pollHostStats()
	}
	return m, nil
}

func podRows(pods []*domespb.PodSummary) []table.Row {
	rows := make([]table.Row, 0, len(pods))
	for _, p := range pods {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", p.PodID),
			p.Mac,
			p.Mode,
			connLabel(p.Connected),
			time.UnixMicro(p.LastSeenUs).Format(time.TimeOnly),
		})
	}
	return rows
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("DOMES fleet monitor — %s", m.addr)))
	b.WriteString("\n\n")

	if m.hostStats != nil {
		b.WriteString(fmt.Sprintf("gateway: cpu %.1f%%  mem %.1f%%  uptime %ds  pods %d\n\n",
			m.hostStats.LoadAverage1M, m.hostStats.MemUsedPercent, m.hostStats.UptimeSeconds, m.hostStats.PodCount))
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if len(m.table.Rows()) == 0 {
		b.WriteString(hintStyle.Render("  no pods registered\n"))
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("poll error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑/↓ select pod · q quit"))

	return b.String()
}

func connLabel(connected bool) string {
	if connected {
		return okStyle.Render("up")
	}
	return warnStyle.Render("down")
}
