package tui

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type View int

const (
	ViewHealth View = iota
	ViewSearch
	ViewLineage

	viewCount = 3
)

func (v View) String() string {
	switch v {
	case ViewHealth:
		return "Health"
	case ViewSearch:
		return "Search"
	case ViewLineage:
		return "Lineage"
	default:
		return "Unknown"
	}
}

type Options struct {
	Catalog        Catalog
	BaseURL        string
	Logger         *slog.Logger
	DefaultDepth   int
	SearchLimit    int
	RequestTimeout time.Duration
}

// App is the shell. It owns which view is active and nothing else; each
// view keeps its own data whether or not it is shown.
type App struct {
	active  View
	health  HealthModel
	search  SearchModel
	lineage LineageModel
	baseURL string
	width   int
	height  int
	startup []tea.Cmd
}

func NewApp(opts Options) App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	req := requester{
		catalog: opts.Catalog,
		timeout: opts.RequestTimeout,
		logger:  logger,
	}

	return App{
		active:  ViewHealth,
		health:  NewHealthModel(req),
		search:  NewSearchModel(req, opts.SearchLimit),
		lineage: NewLineageModel(req, opts.DefaultDepth),
		baseURL: opts.BaseURL,
	}
}

func (m App) Active() View {
	return m.active
}

func (m App) Health() HealthModel {
	return m.health
}

func (m App) Search() SearchModel {
	return m.search
}

func (m App) Lineage() LineageModel {
	return m.lineage
}

// OpenSearch starts on the search view with query already submitted.
func (m App) OpenSearch(query string) App {
	m = m.setActive(ViewSearch)
	m.search.input.SetValue(query)

	var focusCmd, cmd tea.Cmd
	m.search, focusCmd = m.search.focus()
	m.search, cmd = m.search.Search(query)
	m.startup = append(m.startup, focusCmd, cmd)
	return m
}

// OpenLineage starts on the lineage view with a graph load in flight.
func (m App) OpenLineage(assetID string, depth int) App {
	m = m.setActive(ViewLineage)
	m.lineage.input.SetValue(assetID)
	if depth > 0 {
		m.lineage.depth = clampDepth(depth)
	}

	var focusCmd, cmd tea.Cmd
	m.lineage, focusCmd = m.lineage.focus()
	m.lineage, cmd = m.lineage.Load(assetID, m.lineage.depth)
	m.startup = append(m.startup, focusCmd, cmd)
	return m
}

func (m App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.health.spinner.Tick,
		m.search.spinner.Tick,
		m.lineage.spinner.Tick,
	}
	cmds = append(cmds, m.startup...)
	return tea.Batch(cmds...)
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m.switchTo((m.active + 1) % viewCount)
		case "shift+tab":
			return m.switchTo((m.active + viewCount - 1) % viewCount)
		}
		return m.updateActive(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search, _ = m.search.Update(msg)
		m.lineage, _ = m.lineage.Update(msg)
		return m, nil

	case CatalogChangedMsg:
		m.health.req.catalog = msg.Catalog
		m.search.req.catalog = msg.Catalog
		m.lineage.req.catalog = msg.Catalog
		m.baseURL = msg.BaseURL
		return m, nil

	case HealthResultMsg, ReadinessResultMsg:
		m.health, cmd = m.health.Update(msg)
		return m, cmd

	case SearchResultMsg:
		m.search, cmd = m.search.Update(msg)
		return m, cmd

	case LineageResultMsg:
		m.lineage, cmd = m.lineage.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmds [3]tea.Cmd
		m.health, cmds[0] = m.health.Update(msg)
		m.search, cmds[1] = m.search.Update(msg)
		m.lineage, cmds[2] = m.lineage.Update(msg)
		return m, tea.Batch(cmds[:]...)
	}

	return m.updateActive(msg)
}

func (m App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case ViewHealth:
		m.health, cmd = m.health.Update(msg)
	case ViewSearch:
		m.search, cmd = m.search.Update(msg)
	case ViewLineage:
		m.lineage, cmd = m.lineage.Update(msg)
	}
	return m, cmd
}

func (m App) switchTo(v View) (tea.Model, tea.Cmd) {
	m = m.setActive(v)

	var cmd tea.Cmd
	switch v {
	case ViewSearch:
		m.search, cmd = m.search.focus()
	case ViewLineage:
		m.lineage, cmd = m.lineage.focus()
	}
	return m, cmd
}

func (m App) setActive(v View) App {
	m.search = m.search.blur()
	m.lineage = m.lineage.blur()
	m.active = v
	return m
}

func (m App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("CDGC-Lite") + " ")
	b.WriteString(dimStyle.Render(m.baseURL) + "\n\n")

	tabs := make([]string, viewCount)
	for v := View(0); v < viewCount; v++ {
		if v == m.active {
			tabs[v] = activeTabStyle.Render(v.String())
		} else {
			tabs[v] = tabStyle.Render(v.String())
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	switch m.active {
	case ViewHealth:
		b.WriteString(m.health.View())
	case ViewSearch:
		b.WriteString(m.search.View())
	case ViewLineage:
		b.WriteString(m.lineage.View())
	}

	b.WriteString("\n" + helpStyle.Render("tab/shift+tab switch view  esc quit"))

	return b.String()
}
