package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/cdgcview/internal/catalog"
	"github.com/mgomes/cdgcview/internal/catalog/catalogtest"
	"github.com/stretchr/testify/require"
)

var errRejected = errors.New("connection refused")

// failingCatalog rejects every call, standing in for a fetch that never
// reaches the service.
type failingCatalog struct{}

func (failingCatalog) Health(context.Context) (string, error) {
	return "", &catalog.TransportError{Op: "healthz", Kind: catalog.KindUnreachable, Err: errRejected}
}

func (failingCatalog) Ready(context.Context) (catalog.Readiness, error) {
	return catalog.Readiness{}, &catalog.TransportError{Op: "readyz", Kind: catalog.KindUnreachable, Err: errRejected}
}

func (failingCatalog) Search(context.Context, string, catalog.SearchOptions) (catalog.SearchResultSet, error) {
	return catalog.SearchResultSet{}, &catalog.TransportError{Op: "search", Kind: catalog.KindUnreachable, Err: errRejected}
}

func (failingCatalog) Lineage(context.Context, catalog.LineageRequest) (catalog.LineageGraph, error) {
	return catalog.LineageGraph{}, &catalog.TransportError{Op: "lineage", Kind: catalog.KindUnreachable, Err: errRejected}
}

func newRequester(t *testing.T, srv *catalogtest.Server) requester {
	t.Helper()
	client, err := catalog.NewClient(srv.URL)
	require.NoError(t, err)
	return NewApp(Options{Catalog: client}).health.req
}

func newTestApp(t *testing.T, srv *catalogtest.Server) App {
	t.Helper()
	client, err := catalog.NewClient(srv.URL)
	require.NoError(t, err)
	return NewApp(Options{Catalog: client, BaseURL: srv.URL, DefaultDepth: 2})
}

func key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// run executes a request command the way the Bubble Tea runtime would.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func update(t *testing.T, m tea.Model, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	app, ok := next.(App)
	require.True(t, ok)
	return app, cmd
}
