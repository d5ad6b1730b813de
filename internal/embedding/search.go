package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Searcher answers semantic queries against a built index by embedding the
// query text and ranking indexed movies by cosine similarity.
type Searcher struct {
	embedder Embedder
	index    *Index
}

// NewSearcher wires a query-side searcher.
func NewSearcher(embedder Embedder, index *Index) (*Searcher, error) {
	if embedder == nil {
		return nil, errors.New("embedding: embedder required")
	}
	if index == nil {
		return nil, errors.New("embedding: index required")
	}
	return &Searcher{embedder: embedder, index: index}, nil
}

// SearchIDs returns the ids of the k movies nearest to the query text.
func (s *Searcher) SearchIDs(ctx context.Context, query string, k int) ([]int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("embedding: query required")
	}
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.index.Search(vector, k)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	return ids, nil
}
