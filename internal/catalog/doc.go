// Package catalog persists the movie catalog in SQLite and implements the
// store contract the enrichment scheduler depends on: selecting movies with
// unset enrichable fields and merging newly fetched fields without ever
// overwriting data that is already present.
package catalog
