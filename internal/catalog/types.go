package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies a catalog entity. The service emits integer keys, but the
// client accepts strings as well and never does arithmetic on them.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// HealthStatus is the liveness payload. Status is a pointer so an absent
// field fails validation while an empty string is still a valid status.
type HealthStatus struct {
	Status *string `json:"status" validate:"required"`
}

type Readiness struct {
	Status  string   `json:"status" validate:"required"`
	Missing []string `json:"missing"`
}

type AssetHit struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name" validate:"required"`
	SystemID    ID       `json:"system_id"`
	Description string   `json:"description"`
	Highlight   string   `json:"highlight"`
	Rank        *float64 `json:"rank"`
}

type ColumnHit struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name" validate:"required"`
	AssetID     ID       `json:"asset_id"`
	DataType    string   `json:"data_type"`
	Description string   `json:"description"`
	Highlight   string   `json:"highlight"`
	Rank        *float64 `json:"rank"`
}

// SearchResultSet is one search response. Hits keep the order the service
// ranked them in.
type SearchResultSet struct {
	Assets  []AssetHit  `json:"assets" validate:"dive"`
	Columns []ColumnHit `json:"columns" validate:"dive"`
}

func (s *SearchResultSet) normalize() {
	if s.Assets == nil {
		s.Assets = []AssetHit{}
	}
	if s.Columns == nil {
		s.Columns = []ColumnHit{}
	}
}

type LineageNode struct {
	ID       ID     `json:"id" validate:"required"`
	Name     string `json:"name"`
	SystemID ID     `json:"system_id"`
}

// LineageEdge is a directed source -> target dependency.
type LineageEdge struct {
	Source ID `json:"source" validate:"required"`
	Target ID `json:"target" validate:"required"`
}

type LineageGraph struct {
	Nodes []LineageNode `json:"nodes" validate:"dive"`
	Edges []LineageEdge `json:"edges" validate:"dive"`
}

func (g *LineageGraph) normalize() {
	if g.Nodes == nil {
		g.Nodes = []LineageNode{}
	}
	if g.Edges == nil {
		g.Edges = []LineageEdge{}
	}
}
