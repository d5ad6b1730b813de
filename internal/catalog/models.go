package catalog

import (
	"strings"
	"time"
)

// Enrichable field names. These are the catalog columns an enrichment run is
// allowed to fill in; once set they are never cleared or replaced.
const (
	FieldExternalID     = "external_id"
	FieldCanonicalTitle = "canonical_title"
	FieldOverview       = "overview"
	FieldReleaseDate    = "release_date"
	FieldDirector       = "director"
	FieldCast           = "cast_list"
)

var enrichableFields = []string{
	FieldExternalID,
	FieldCanonicalTitle,
	FieldOverview,
	FieldReleaseDate,
	FieldDirector,
	FieldCast,
}

var enrichableFieldSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(enrichableFields))
	for _, field := range enrichableFields {
		set[field] = struct{}{}
	}
	return set
}()

// EnrichableFields returns the ordered list of field names enrichment may fill.
func EnrichableFields() []string {
	cp := make([]string, len(enrichableFields))
	copy(cp, enrichableFields)
	return cp
}

// IsEnrichableField reports whether name is a known enrichable column.
func IsEnrichableField(name string) bool {
	_, ok := enrichableFieldSet[name]
	return ok
}

// Fields maps enrichable field names to values. An absent key or a value that
// trims to empty both mean "unset".
type Fields map[string]string

// IsSet reports whether the named field holds a non-empty value.
func (f Fields) IsSet(name string) bool {
	return strings.TrimSpace(f[name]) != ""
}

// Movie is one catalog record.
type Movie struct {
	ID        int64
	Title     string
	Year      *int
	AvgRating *float64
	IMDBURL   string
	Genres    string

	ExternalID     string
	CanonicalTitle string
	Overview       string
	ReleaseDate    string
	Director       string
	CastList       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnrichableValues returns the movie's current enrichable field values.
func (m *Movie) EnrichableValues() Fields {
	return Fields{
		FieldExternalID:     m.ExternalID,
		FieldCanonicalTitle: m.CanonicalTitle,
		FieldOverview:       m.Overview,
		FieldReleaseDate:    m.ReleaseDate,
		FieldDirector:       m.Director,
		FieldCast:           m.CastList,
	}
}

// WorkItem is one unit of enrichment work: a movie with at least one unset
// enrichable field, captured at selection time.
type WorkItem struct {
	ID       int64
	Title    string
	Year     *int
	Existing Fields
}

// Missing returns the enrichable field names the item still lacks.
func (w WorkItem) Missing() []string {
	var missing []string
	for _, field := range enrichableFields {
		if !w.Existing.IsSet(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// FieldUpdate carries one movie's write set to the batched flush.
type FieldUpdate struct {
	ID     int64
	Fields Fields
}

// Stats aggregates catalog completeness for diagnostic output.
type Stats struct {
	Total      int
	Incomplete int
	PerField   map[string]int // filled count per enrichable field
}

// MovieSeed is one row of an ingested dataset, before it has a catalog id.
type MovieSeed struct {
	Title     string
	Year      *int
	AvgRating *float64
	IMDBURL   string
	Genres    []string
	Ratings   []RatingSeed
}

// RatingSeed is one user rating attached to a MovieSeed.
type RatingSeed struct {
	UserID int64
	Rating float64
}
