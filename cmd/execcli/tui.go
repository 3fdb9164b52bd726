package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/execpipe/backend/execsrvc"
)

type phase int

const (
	phaseRunning phase = iota
	phaseDone
)

type execResult struct {
	resp *execsrvc.ExecResponse
	err  error
}

type model struct {
	client *apiClient
	req    execsrvc.ExecRequest

	phase      phase
	runSpinner spinner.Model
	result     execResult
}

func initialModel(client *apiClient, srcCode string, langID string, stdin string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))

	return model{
		client: client,
		req: execsrvc.ExecRequest{
			SrcCode: srcCode,
			LangID:  langID,
			Stdin:   stdin,
		},
		phase:      phaseRunning,
		runSpinner: s,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.runSpinner.Tick, func() tea.Msg {
		resp, err := m.client.execute(m.req)
		return execResult{resp: resp, err: err}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case execResult:
		m.result = msg
		m.phase = phaseDone
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.runSpinner, cmd = m.runSpinner.Update(msg)
	return m, cmd
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#95a5a6"))
)

func (m model) View() string {
	if m.phase == phaseRunning {
		return fmt.Sprintf("%s running %s...\n", m.runSpinner.View(), m.req.LangID)
	}

	if m.result.err != nil {
		return failStyle.Render(fmt.Sprintf("error: %v", m.result.err)) + "\n"
	}

	resp := m.result.resp
	var b strings.Builder

	verdict := okStyle.Render(string(resp.Status))
	if !resp.Success {
		verdict = failStyle.Render(string(resp.Status))
	}
	fmt.Fprintf(&b, "verdict: %s", verdict)
	if resp.Cached {
		fmt.Fprintf(&b, " %s", dimStyle.Render("(cached)"))
	}
	fmt.Fprintf(&b, "\n%s\n",
		dimStyle.Render(fmt.Sprintf("cpu: %dms, mem: %dKiB", resp.CpuMs, resp.MemKiB)))

	if resp.Stdout != "" {
		fmt.Fprintf(&b, "stdout:\n%s\n", resp.Stdout)
	}
	if resp.Stderr != "" {
		fmt.Fprintf(&b, "stderr:\n%s\n", failStyle.Render(resp.Stderr))
	}
	return b.String()
}
