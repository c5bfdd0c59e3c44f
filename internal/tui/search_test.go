package tui

import (
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/cdgcview/internal/catalog"
	"github.com/mgomes/cdgcview/internal/catalog/catalogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const revenueResults = `{
	"assets": [
		{"id": 7, "system_id": 1, "name": "revenue", "highlight": "<b>Revenue</b> table", "rank": 0.8234},
		{"id": 8, "system_id": 1, "name": "revenue_daily", "highlight": "daily <b>revenue</b>"}
	],
	"columns": [
		{"id": 11, "asset_id": 7, "name": "amount", "highlight": "net <b>revenue</b>", "rank": 0.5}
	]
}`

func TestSearch_IssuesOneRequestPerSubmit(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, `{"assets":[],"columns":[]}`)

	m := NewSearchModel(newRequester(t, srv), 0)
	for _, q := range []string{"revenue", "orders & returns", " leading space", "ü/?#"} {
		m2, cmd := m.Search(q)
		m, _ = m2.Update(run(t, cmd))

		reqs := srv.RequestsTo(catalogtest.SearchPath)
		require.NotEmpty(t, reqs)
		assert.Equal(t, q, reqs[len(reqs)-1].Query.Get("q"))
	}
	assert.Len(t, srv.RequestsTo(catalogtest.SearchPath), 4)
}

func TestSearch_EmptyQueryIsNoop(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	m := NewSearchModel(newRequester(t, srv), 0)
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))
	before := m.Results()

	m, cmd = m.Search("")
	assert.Nil(t, cmd)
	assert.False(t, m.Loading())
	assert.Equal(t, before, m.Results())
	assert.Len(t, srv.Requests(), 1)
}

func TestSearch_InitialResultsAreEmpty(t *testing.T) {
	m := NewSearchModel(requester{}, 0)

	assert.Equal(t, PhaseIdle, m.Phase())
	assert.NotNil(t, m.Results().Assets)
	assert.NotNil(t, m.Results().Columns)
	assert.Empty(t, m.Results().Assets)
	assert.Empty(t, m.Results().Columns)
}

func TestSearch_LoadingClearsOnSuccess(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	m := NewSearchModel(newRequester(t, srv), 0)
	m, cmd := m.Search("revenue")
	assert.True(t, m.Loading())
	assert.Equal(t, PhaseLoading, m.Phase())

	m, _ = m.Update(run(t, cmd))
	assert.False(t, m.Loading())
	assert.Equal(t, PhaseSucceeded, m.Phase())
	assert.NoError(t, m.Err())

	res := m.Results()
	require.Len(t, res.Assets, 2)
	assert.Equal(t, "revenue", res.Assets[0].Name)
	assert.Equal(t, "revenue_daily", res.Assets[1].Name)
	require.Len(t, res.Columns, 1)
	assert.Equal(t, "revenue", m.Query())
}

func TestSearch_LoadingClearsOnFailureAndKeepsResults(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	m := NewSearchModel(newRequester(t, srv), 0)
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))
	before := m.Results()

	m.req.catalog = failingCatalog{}
	m, cmd = m.Search("orders")
	assert.True(t, m.Loading())

	m, _ = m.Update(run(t, cmd))
	assert.False(t, m.Loading())
	assert.Equal(t, PhaseFailed, m.Phase())
	assert.True(t, catalog.IsKind(m.Err(), catalog.KindUnreachable))
	assert.Equal(t, before, m.Results())
	assert.Equal(t, "revenue", m.Query())
	assert.Contains(t, m.View(), "request failed")
}

func TestSearch_MalformedResponseKeepsResults(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Enqueue(catalogtest.SearchPath,
		catalogtest.Response{Status: http.StatusOK, Body: revenueResults},
		catalogtest.Response{Status: http.StatusOK, Body: `not json`},
	)

	m := NewSearchModel(newRequester(t, srv), 0)
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))
	m, cmd = m.Search("revenue again")
	m, _ = m.Update(run(t, cmd))

	assert.Equal(t, PhaseFailed, m.Phase())
	assert.True(t, catalog.IsKind(m.Err(), catalog.KindDecode))
	assert.Len(t, m.Results().Assets, 2)
}

func TestSearch_SupersededResponseIsDiscarded(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Enqueue(catalogtest.SearchPath,
		catalogtest.Response{Status: http.StatusOK, Body: `{"assets":[{"id":1,"name":"first"}],"columns":[]}`},
		catalogtest.Response{Status: http.StatusOK, Body: `{"assets":[{"id":2,"name":"second"}],"columns":[]}`},
	)

	m := NewSearchModel(newRequester(t, srv), 0)
	m, first := m.Search("first")
	m, second := m.Search("second")
	firstMsg := run(t, first)
	secondMsg := run(t, second)

	// The older response lands first: it must not settle the view.
	m, _ = m.Update(firstMsg)
	assert.True(t, m.Loading())
	assert.Empty(t, m.Results().Assets)

	m, _ = m.Update(secondMsg)
	assert.False(t, m.Loading())
	require.Len(t, m.Results().Assets, 1)
	assert.Equal(t, "second", m.Results().Assets[0].Name)

	// And when it lands last it must not overwrite the newer one.
	m, _ = m.Update(firstMsg)
	assert.Equal(t, "second", m.Results().Assets[0].Name)
	assert.Equal(t, "second", m.Query())
}

func TestSearch_EnterSubmitsInput(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	app := newTestApp(t, srv)
	app, _ = update(t, app, key("tab"))
	require.Equal(t, ViewSearch, app.Active())

	app = typeText(app, "revenue").(App)
	app, cmd := update(t, app, key("enter"))
	assert.True(t, app.Search().Loading())

	app, _ = update(t, app, run(t, cmd))
	assert.False(t, app.Search().Loading())

	reqs := srv.RequestsTo(catalogtest.SearchPath)
	require.Len(t, reqs, 1)
	assert.Equal(t, "revenue", reqs[0].Query.Get("q"))
}

func TestSearch_EnterWithEmptyInputIsNoop(t *testing.T) {
	srv := catalogtest.NewServer(t)

	app := newTestApp(t, srv)
	app, _ = update(t, app, key("tab"))
	app, cmd := update(t, app, key("enter"))

	assert.Nil(t, cmd)
	assert.False(t, app.Search().Loading())
	assert.Empty(t, srv.Requests())
}

func TestSearch_View(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	m := NewSearchModel(newRequester(t, srv), 0)
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))

	view := m.View()
	assert.Contains(t, view, "revenue (system 1)")
	assert.Contains(t, view, "Revenue table | rank: 0.823")
	assert.Contains(t, view, "daily revenue")
	assert.NotContains(t, view, "daily revenue | rank")
	assert.Contains(t, view, "amount (asset 7)")
	assert.Contains(t, view, "net revenue | rank: 0.500")
	assert.NotContains(t, view, "<b>")
}

func TestSearch_ViewKeepsRankOnLongHighlight(t *testing.T) {
	srv := catalogtest.NewServer(t)
	highlight := strings.Repeat("monthly <b>revenue</b> rolled up by region and product line ", 6)
	srv.RespondJSON(t, catalogtest.SearchPath, http.StatusOK, map[string]any{
		"assets": []map[string]any{
			{"id": 1, "system_id": 1, "name": "revenue", "highlight": highlight, "rank": 0.8234},
		},
	})

	m := NewSearchModel(newRequester(t, srv), 0)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))

	assert.Contains(t, m.View(), "| rank: 0.823")
}

func TestSearch_ViewRangeReflectsReturnedHits(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	m := NewSearchModel(newRequester(t, srv), 10)
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))

	view := m.View()
	assert.Contains(t, view, "results 1-2")
	assert.NotContains(t, view, "results 1-10")
}

func TestSearch_ViewHidesRangeWhenPageIsEmpty(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, `{"assets":[],"columns":[]}`)

	m := NewSearchModel(newRequester(t, srv), 10)
	m, cmd := m.Search("nothing")
	m, _ = m.Update(run(t, cmd))

	assert.NotContains(t, m.View(), "results ")
}

func TestSearch_Paging(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	m := NewSearchModel(newRequester(t, srv), 2)
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))

	m, cmd = m.Update(key("ctrl+n"))
	m, _ = m.Update(run(t, cmd))
	assert.Equal(t, 2, m.Offset())

	m, cmd = m.Update(key("ctrl+p"))
	m, _ = m.Update(run(t, cmd))
	assert.Equal(t, 0, m.Offset())

	_, cmd = m.Update(key("ctrl+p"))
	assert.Nil(t, cmd)

	reqs := srv.RequestsTo(catalogtest.SearchPath)
	require.Len(t, reqs, 3)
	assert.Equal(t, "2", reqs[0].Query.Get("limit"))
	assert.Equal(t, "", reqs[0].Query.Get("offset"))
	assert.Equal(t, "2", reqs[1].Query.Get("offset"))
	assert.Equal(t, "revenue", reqs[2].Query.Get("q"))
}

func TestSearch_PagingDisabledWithoutLimit(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.Respond(catalogtest.SearchPath, http.StatusOK, revenueResults)

	m := NewSearchModel(newRequester(t, srv), 0)
	m, cmd := m.Search("revenue")
	m, _ = m.Update(run(t, cmd))

	_, cmd = m.Update(key("ctrl+n"))
	assert.Nil(t, cmd)
}
