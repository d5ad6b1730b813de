package embedding

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// Index is a flat inner-product index over normalized vectors. Vectors are
// normalized on insertion, so the inner product is cosine similarity.
type Index struct {
	dim     int
	ids     []int64
	vectors [][]float32
}

// indexFile is the gob-serializable form of an Index.
type indexFile struct {
	Dim     int
	IDs     []int64
	Vectors [][]float32
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, errors.New("index dimension must be positive")
	}
	return &Index{dim: dim}, nil
}

// Len reports the number of indexed vectors.
func (ix *Index) Len() int { return len(ix.ids) }

// Dim reports the vector dimension.
func (ix *Index) Dim() int { return ix.dim }

// Add normalizes and stores one vector under the given id.
func (ix *Index) Add(id int64, vector []float32) error {
	if len(vector) != ix.dim {
		return fmt.Errorf("vector dimension %d, index dimension %d", len(vector), ix.dim)
	}
	normalized, err := normalize(vector)
	if err != nil {
		return fmt.Errorf("vector for id %d: %w", id, err)
	}
	ix.ids = append(ix.ids, id)
	ix.vectors = append(ix.vectors, normalized)
	return nil
}

// Hit is one search result: an indexed id and its cosine similarity to the
// query.
type Hit struct {
	ID    int64
	Score float32
}

// Search returns the k nearest ids by cosine similarity, best first. Ties
// break on the lower id so results are deterministic.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	normalized, err := normalize(query)
	if err != nil {
		return nil, fmt.Errorf("query vector: %w", err)
	}

	hits := make([]Hit, 0, len(ix.ids))
	for i, vec := range ix.vectors {
		var dot float32
		for j := range vec {
			dot += vec[j] * normalized[j]
		}
		hits = append(hits, Hit{ID: ix.ids[i], Score: dot})
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID < hits[b].ID
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Save writes the index atomically to path.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	defer os.Remove(tmp.Name())

	file := indexFile{Dim: ix.dim, IDs: ix.ids, Vectors: ix.vectors}
	if err := gob.NewEncoder(tmp).Encode(file); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// LoadIndex reads an index previously written by Save.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	var file indexFile
	if err := gob.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if file.Dim <= 0 || len(file.IDs) != len(file.Vectors) {
		return nil, errors.New("index file is inconsistent")
	}
	return &Index{dim: file.Dim, ids: file.IDs, vectors: file.Vectors}, nil
}

func normalize(vector []float32) ([]float32, error) {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, errors.New("zero-length vector")
	}
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}
