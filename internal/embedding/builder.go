package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cinefill/internal/catalog"
	"cinefill/internal/logging"
)

// Builder embeds every catalog movie and assembles the vector index.
type Builder struct {
	store     *catalog.Store
	embedder  Embedder
	batchSize int
	logger    *slog.Logger
}

// NewBuilder wires an index builder. A nil logger disables logging.
func NewBuilder(store *catalog.Store, embedder Embedder, batchSize int, logger *slog.Logger) (*Builder, error) {
	if store == nil {
		return nil, errors.New("embedding: store required")
	}
	if embedder == nil {
		return nil, errors.New("embedding: embedder required")
	}
	if batchSize <= 0 {
		return nil, errors.New("embedding: batch size must be positive")
	}
	return &Builder{
		store:     store,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logging.NewComponentLogger(logger, "index-builder"),
	}, nil
}

// Build embeds all movies in batches and returns the populated index.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	movies, err := b.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	if len(movies) == 0 {
		return nil, errors.New("catalog is empty, nothing to index")
	}
	b.logger.Info("building index", logging.Int("movies", len(movies)))

	var index *Index
	for start := 0; start < len(movies); start += b.batchSize {
		end := start + b.batchSize
		if end > len(movies) {
			end = len(movies)
		}
		batch := movies[start:end]
		texts := make([]string, len(batch))
		for i, movie := range batch {
			texts[i] = DocumentText(movie)
		}
		vectors, err := b.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch at offset %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embed batch at offset %d: got %d vectors for %d texts", start, len(vectors), len(batch))
		}
		if index == nil {
			index, err = NewIndex(len(vectors[0]))
			if err != nil {
				return nil, err
			}
		}
		for i, vec := range vectors {
			if err := index.Add(batch[i].ID, vec); err != nil {
				return nil, err
			}
		}
		b.logger.Debug("batch embedded",
			logging.Int("offset", start),
			logging.Int("size", len(batch)))
	}
	return index, nil
}

// DocumentText renders one movie as the text that gets embedded: the best
// known title followed by labelled metadata, pipe-separated.
func DocumentText(movie *catalog.Movie) string {
	title := strings.TrimSpace(movie.CanonicalTitle)
	if title == "" {
		title = strings.TrimSpace(movie.Title)
	}
	parts := []string{title}
	if v := strings.TrimSpace(movie.ReleaseDate); v != "" {
		parts = append(parts, "Release Date: "+v)
	}
	if v := strings.TrimSpace(movie.Genres); v != "" {
		parts = append(parts, "Genres: "+v)
	}
	if v := strings.TrimSpace(movie.Director); v != "" {
		parts = append(parts, "Director: "+v)
	}
	if v := strings.TrimSpace(movie.CastList); v != "" {
		parts = append(parts, "Cast: "+v)
	}
	if v := strings.TrimSpace(movie.Overview); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " | ")
}
