// Package api serves the enriched catalog over HTTP: semantic search,
// metadata lookup, and grounded question answering. Handlers are thin JSON
// shims over the embedding searcher, the catalog store, and the answer
// client.
package api
