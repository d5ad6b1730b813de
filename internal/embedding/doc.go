// Package embedding turns enriched catalog records into a searchable vector
// index. Documents are embedded through the Cohere Embed API, normalized,
// and kept in a flat inner-product index persisted with gob. The index is
// small enough (tens of thousands of movies) that exact brute-force search
// beats the operational cost of an external vector store.
package embedding
