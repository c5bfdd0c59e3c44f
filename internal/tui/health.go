package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/cdgcview/internal/catalog"
)

const (
	HealthUnknown = "unknown"
	HealthError   = "error"
)

type HealthModel struct {
	req       requester
	state     requestState
	status    string
	ready     requestState
	readiness catalog.Readiness
	spinner   spinner.Model
}

func NewHealthModel(req requester) HealthModel {
	return HealthModel{
		req:     req,
		status:  HealthUnknown,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Status is the displayed health: "unknown" before any probe completes,
// the service's status text after a successful probe, "error" otherwise.
func (m HealthModel) Status() string {
	return m.status
}

func (m HealthModel) Phase() Phase {
	return m.state.phase
}

func (m HealthModel) Loading() bool {
	return m.state.phase == PhaseLoading || m.ready.phase == PhaseLoading
}

func (m HealthModel) CheckHealth() (HealthModel, tea.Cmd) {
	token := m.state.begin()
	req := m.req

	return m, func() tea.Msg {
		ctx, cancel := req.context()
		defer cancel()

		status, err := req.catalog.Health(ctx)
		return HealthResultMsg{Token: token, Status: status, Err: err}
	}
}

func (m HealthModel) CheckReadiness() (HealthModel, tea.Cmd) {
	token := m.ready.begin()
	req := m.req

	return m, func() tea.Msg {
		ctx, cancel := req.context()
		defer cancel()

		readiness, err := req.catalog.Ready(ctx)
		return ReadinessResultMsg{Token: token, Readiness: readiness, Err: err}
	}
}

func (m HealthModel) Update(msg tea.Msg) (HealthModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.CheckHealth()
		case "r":
			return m.CheckReadiness()
		}

	case HealthResultMsg:
		if !m.state.current(msg.Token) {
			m.req.discardStale("health", msg.Token, m.state.token)
			return m, nil
		}
		m.state.settle(msg.Err)
		if msg.Err != nil {
			m.status = HealthError
		} else {
			m.status = msg.Status
		}

	case ReadinessResultMsg:
		if !m.ready.current(msg.Token) {
			m.req.discardStale("readiness", msg.Token, m.ready.token)
			return m, nil
		}
		m.ready.settle(msg.Err)
		if msg.Err == nil {
			m.readiness = msg.Readiness
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m HealthModel) View() string {
	var b strings.Builder

	b.WriteString("API status: ")
	if m.state.phase == PhaseLoading {
		b.WriteString(m.spinner.View() + " ")
	}
	switch m.status {
	case HealthError:
		b.WriteString(errorStyle.Render(m.status))
	case HealthUnknown:
		b.WriteString(dimStyle.Render(m.status))
	default:
		b.WriteString(activeStyle.Render(m.status))
	}
	b.WriteString("\n")

	switch m.ready.phase {
	case PhaseLoading:
		b.WriteString("Readiness:  " + m.spinner.View() + "\n")
	case PhaseFailed:
		b.WriteString("Readiness:  " + errorStyle.Render(HealthError) + "\n")
	case PhaseSucceeded:
		b.WriteString("Readiness:  " + activeStyle.Render(m.readiness.Status) + "\n")
		if len(m.readiness.Missing) > 0 {
			b.WriteString(dimStyle.Render("  missing: "+strings.Join(m.readiness.Missing, ", ")) + "\n")
		}
	}

	b.WriteString("\n" + helpStyle.Render("enter check health  r check readiness"))

	return b.String()
}
