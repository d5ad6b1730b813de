package enrich

import (
	"strings"

	"cinefill/internal/catalog"
)

// Merge computes the write set for one record: fetched values for enrichable
// fields the record does not already hold. Fields that are set stay
// untouched, empty fetched values are never written, so the result contains
// no clearing instruction and re-applying it is a no-op.
func Merge(existing, fetched catalog.Fields) catalog.Fields {
	writes := catalog.Fields{}
	for _, field := range catalog.EnrichableFields() {
		if existing.IsSet(field) {
			continue
		}
		value := strings.TrimSpace(fetched[field])
		if value == "" {
			continue
		}
		writes[field] = value
	}
	return writes
}
