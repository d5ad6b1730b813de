package embedding

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"cinefill/internal/catalog"
	"cinefill/internal/testsupport"
)

func TestIndexSearchRanksByCosine(t *testing.T) {
	ix, err := NewIndex(2)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	// Unnormalized inputs: similarity must not depend on magnitude.
	if err := ix.Add(1, []float32{10, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Add(2, []float32{1, 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Add(3, []float32{0, 5}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := ix.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != 1 || hits[1].ID != 2 {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Score < 0.999 {
		t.Fatalf("exact direction should score ~1, got %f", hits[0].Score)
	}
}

func TestIndexSearchTruncatesAndClamps(t *testing.T) {
	ix, _ := NewIndex(2)
	_ = ix.Add(1, []float32{1, 0})

	hits, err := ix.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("k beyond size must clamp, got %d hits", len(hits))
	}
	if hits, _ = ix.Search([]float32{1, 0}, 0); hits != nil {
		t.Fatalf("k=0 must return nothing, got %+v", hits)
	}
}

func TestIndexRejectsDimensionMismatch(t *testing.T) {
	ix, _ := NewIndex(3)
	if err := ix.Add(1, []float32{1, 0}); err == nil {
		t.Fatal("expected dimension error on Add")
	}
	if _, err := ix.Search([]float32{1, 0}, 1); err == nil {
		t.Fatal("expected dimension error on Search")
	}
}

func TestIndexSaveLoadRoundTrip(t *testing.T) {
	ix, _ := NewIndex(3)
	_ = ix.Add(7, []float32{1, 2, 3})
	_ = ix.Add(8, []float32{3, 2, 1})

	path := filepath.Join(t.TempDir(), "movies.index")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if loaded.Len() != 2 || loaded.Dim() != 3 {
		t.Fatalf("loaded index len=%d dim=%d", loaded.Len(), loaded.Dim())
	}
	hits, err := loaded.Search([]float32{1, 2, 3}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 7 {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestDocumentText(t *testing.T) {
	movie := &catalog.Movie{
		Title:          "Godfather, The",
		CanonicalTitle: "The Godfather",
		ReleaseDate:    "1972-03-14",
		Genres:         "Crime, Drama",
		Director:       "Francis Ford Coppola",
		CastList:       "Marlon Brando (Don Vito Corleone)",
		Overview:       "The aging patriarch hands over his empire.",
	}
	got := DocumentText(movie)
	want := "The Godfather | Release Date: 1972-03-14 | Genres: Crime, Drama | Director: Francis Ford Coppola | Cast: Marlon Brando (Don Vito Corleone) | The aging patriarch hands over his empire."
	if got != want {
		t.Fatalf("DocumentText = %q, want %q", got, want)
	}

	bare := &catalog.Movie{Title: "Alien"}
	if got := DocumentText(bare); got != "Alien" {
		t.Fatalf("bare DocumentText = %q", got)
	}
}

// fixedEmbedder maps each text to a deterministic vector derived from its
// length, good enough to exercise batching.
type fixedEmbedder struct {
	calls int
}

func (f *fixedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1, float32(strings.Count(text, "|"))}
	}
	return out, nil
}

func (f *fixedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func TestBuilderEmbedsInBatches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	var seeds []catalog.MovieSeed
	for _, title := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
		seeds = append(seeds, catalog.MovieSeed{Title: title})
	}
	testsupport.SeedMovies(t, store, seeds...)

	embedder := &fixedEmbedder{}
	builder, err := NewBuilder(store, embedder, 2, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	index, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if index.Len() != 5 {
		t.Fatalf("index len = %d", index.Len())
	}
	if embedder.calls != 3 {
		t.Fatalf("expected 3 batches of size 2, got %d calls", embedder.calls)
	}
}
