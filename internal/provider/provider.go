package provider

import (
	"context"

	"cinefill/internal/catalog"
)

// Summary is one provider search hit: enough to rank by year and to fetch
// full details.
type Summary struct {
	ID          string
	Title       string
	ReleaseDate string
}

// Result is the normalized detail record for one provider match. Fields is
// keyed by catalog enrichable field names.
type Result struct {
	ID          string
	Title       string
	ReleaseDate string
	Fields      catalog.Fields
}

// Gateway is the capability the match resolver depends on. A year of 0 means
// "no year filter". Details returns (nil, nil) when the id resolves to
// nothing usable.
type Gateway interface {
	Name() string
	Search(ctx context.Context, query string, year int) ([]Summary, error)
	Details(ctx context.Context, id string) (*Result, error)
}
