package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/cdgcview/internal/catalog"
)

type SearchModel struct {
	req     requester
	input   textinput.Model
	spinner spinner.Model
	state   requestState
	results catalog.SearchResultSet
	query   string
	limit   int
	offset  int
	width   int
}

func NewSearchModel(req requester, limit int) SearchModel {
	input := textinput.New()
	input.Placeholder = "Search assets and columns..."
	input.Width = 50

	return SearchModel{
		req:     req,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		results: catalog.SearchResultSet{Assets: []catalog.AssetHit{}, Columns: []catalog.ColumnHit{}},
		limit:   limit,
	}
}

func (m SearchModel) Results() catalog.SearchResultSet {
	return m.results
}

// Query is the query the displayed results belong to.
func (m SearchModel) Query() string {
	return m.query
}

func (m SearchModel) Offset() int {
	return m.offset
}

func (m SearchModel) Phase() Phase {
	return m.state.phase
}

func (m SearchModel) Loading() bool {
	return m.state.phase == PhaseLoading
}

func (m SearchModel) Err() error {
	return m.state.err
}

// Search submits query. An empty query is a no-op: no request is issued
// and the displayed results stay as they are.
func (m SearchModel) Search(query string) (SearchModel, tea.Cmd) {
	return m.search(query, 0)
}

func (m SearchModel) search(query string, offset int) (SearchModel, tea.Cmd) {
	if query == "" {
		return m, nil
	}

	token := m.state.begin()
	req := m.req
	opts := catalog.SearchOptions{Limit: m.limit, Offset: offset}

	return m, func() tea.Msg {
		ctx, cancel := req.context()
		defer cancel()

		results, err := req.catalog.Search(ctx, query, opts)
		return SearchResultMsg{Token: token, Query: query, Offset: offset, Results: results, Err: err}
	}
}

func (m SearchModel) focus() (SearchModel, tea.Cmd) {
	cmd := m.input.Focus()
	return m, cmd
}

func (m SearchModel) blur() SearchModel {
	m.input.Blur()
	return m
}

func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.Search(m.input.Value())

		case "ctrl+n":
			if m.limit > 0 && m.query != "" && len(m.results.Assets)+len(m.results.Columns) > 0 {
				return m.search(m.query, m.offset+m.limit)
			}
			return m, nil

		case "ctrl+p":
			if m.limit > 0 && m.query != "" && m.offset > 0 {
				return m.search(m.query, max(0, m.offset-m.limit))
			}
			return m, nil
		}
		m.input, cmd = m.input.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case SearchResultMsg:
		if !m.state.current(msg.Token) {
			m.req.discardStale("search", msg.Token, m.state.token)
			return m, nil
		}
		m.state.settle(msg.Err)
		if msg.Err == nil {
			m.results = msg.Results
			m.query = msg.Query
			m.offset = msg.Offset
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	default:
		m.input, cmd = m.input.Update(msg)
	}

	return m, cmd
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(inputStyle.Render(m.input.View()))
	if m.Loading() {
		b.WriteString(" " + m.spinner.View() + dimStyle.Render(" searching..."))
	}
	b.WriteString("\n")

	if m.state.phase == PhaseFailed {
		b.WriteString(errorStyle.Render("request failed: "+truncate(m.state.err.Error(), 70)) + "\n")
	}

	width := detailWidth(m.width)

	b.WriteString(sectionStyle.Render("Assets") + "\n")
	if len(m.results.Assets) == 0 {
		b.WriteString(dimStyle.Render("  none") + "\n")
	}
	for _, a := range m.results.Assets {
		b.WriteString("  " + nameStyle.Render(assetTitle(a)) + "\n")
		writeDetail(&b, StripTags(a.Highlight), FormatRank(a.Rank), width)
	}

	b.WriteString(sectionStyle.Render("Columns") + "\n")
	if len(m.results.Columns) == 0 {
		b.WriteString(dimStyle.Render("  none") + "\n")
	}
	for _, c := range m.results.Columns {
		b.WriteString("  " + nameStyle.Render(columnTitle(c)) + "\n")
		writeDetail(&b, StripTags(c.Highlight), FormatRank(c.Rank), width)
	}

	help := "enter search"
	if m.limit > 0 {
		if shown := max(len(m.results.Assets), len(m.results.Columns)); m.query != "" && shown > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("\nresults %d-%d", m.offset+1, m.offset+shown)) + "\n")
		}
		help += "  ctrl+n next page  ctrl+p previous page"
	}
	b.WriteString("\n" + helpStyle.Render(help))

	return b.String()
}

func detailWidth(width int) int {
	if width <= 0 {
		return 76
	}
	return max(20, width-6)
}
