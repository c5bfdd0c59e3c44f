package tui

import "github.com/mgomes/cdgcview/internal/catalog"

type SetupSubmitMsg struct {
	BaseURL string
	Depth   int
}

type SetupErrorMsg struct {
	Error string
}

// Result messages carry the token of the request that produced them so a
// view can drop responses it has since superseded.

type HealthResultMsg struct {
	Token  uint64
	Status string
	Err    error
}

type ReadinessResultMsg struct {
	Token     uint64
	Readiness catalog.Readiness
	Err       error
}

type SearchResultMsg struct {
	Token   uint64
	Query   string
	Offset  int
	Results catalog.SearchResultSet
	Err     error
}

type LineageResultMsg struct {
	Token   uint64
	Request catalog.LineageRequest
	Graph   catalog.LineageGraph
	Err     error
}

// CatalogChangedMsg points every view at a new collaborator, e.g. after the
// config file changed.
type CatalogChangedMsg struct {
	Catalog Catalog
	BaseURL string
}
