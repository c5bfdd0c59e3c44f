package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/cdgcview/internal/catalog"
)

const (
	MinDepth = 1
	MaxDepth = 10
)

type LineageModel struct {
	req     requester
	input   textinput.Model
	spinner spinner.Model
	state   requestState
	graph   catalog.LineageGraph
	depth   int
	width   int
}

func NewLineageModel(req requester, depth int) LineageModel {
	input := textinput.New()
	input.Placeholder = "Asset ID (optional)"
	input.Width = 30

	if depth <= 0 {
		depth = catalog.DefaultDepth
	}

	return LineageModel{
		req:     req,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		graph:   catalog.LineageGraph{Nodes: []catalog.LineageNode{}, Edges: []catalog.LineageEdge{}},
		depth:   clampDepth(depth),
	}
}

func (m LineageModel) Graph() catalog.LineageGraph {
	return m.graph
}

func (m LineageModel) Depth() int {
	return m.depth
}

func (m LineageModel) Phase() Phase {
	return m.state.phase
}

func (m LineageModel) Loading() bool {
	return m.state.phase == PhaseLoading
}

func (m LineageModel) Err() error {
	return m.state.err
}

// Load requests the lineage graph around assetID, or the whole graph when
// assetID is empty.
func (m LineageModel) Load(assetID string, depth int) (LineageModel, tea.Cmd) {
	token := m.state.begin()
	req := m.req
	lr := catalog.LineageRequest{AssetID: assetID, Depth: depth, Format: catalog.FormatUI}

	return m, func() tea.Msg {
		ctx, cancel := req.context()
		defer cancel()

		graph, err := req.catalog.Lineage(ctx, lr)
		return LineageResultMsg{Token: token, Request: lr, Graph: graph, Err: err}
	}
}

func (m LineageModel) focus() (LineageModel, tea.Cmd) {
	cmd := m.input.Focus()
	return m, cmd
}

func (m LineageModel) blur() LineageModel {
	m.input.Blur()
	return m
}

func (m LineageModel) Update(msg tea.Msg) (LineageModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.Load(m.input.Value(), m.depth)
		case "up":
			m.depth = clampDepth(m.depth + 1)
			return m, nil
		case "down":
			m.depth = clampDepth(m.depth - 1)
			return m, nil
		}
		m.input, cmd = m.input.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case LineageResultMsg:
		if !m.state.current(msg.Token) {
			m.req.discardStale("lineage", msg.Token, m.state.token)
			return m, nil
		}
		m.state.settle(msg.Err)
		if msg.Err == nil {
			m.graph = msg.Graph
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	default:
		m.input, cmd = m.input.Update(msg)
	}

	return m, cmd
}

func (m LineageModel) View() string {
	var b strings.Builder

	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  depth %d", m.depth)))
	if m.Loading() {
		b.WriteString(" " + m.spinner.View() + dimStyle.Render(" loading..."))
	}
	b.WriteString("\n")

	if m.state.phase == PhaseFailed {
		b.WriteString(errorStyle.Render("request failed: "+truncate(m.state.err.Error(), 70)) + "\n")
	}

	width := detailWidth(m.width)

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Nodes (%d)", len(m.graph.Nodes))) + "\n")
	for _, n := range m.graph.Nodes {
		b.WriteString("  " + nameStyle.Render(nodeTitle(n)) + "\n")
		writeDetail(&b, nodeDetail(n), "", width)
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Edges (%d)", len(m.graph.Edges))) + "\n")
	for _, e := range m.graph.Edges {
		b.WriteString("  " + edgeTitle(e) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter load graph  ↑/↓ depth"))

	return b.String()
}

func clampDepth(depth int) int {
	if depth < MinDepth {
		return MinDepth
	}
	if depth > MaxDepth {
		return MaxDepth
	}
	return depth
}
