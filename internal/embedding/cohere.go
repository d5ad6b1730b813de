package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"cinefill/internal/config"
)

// Embedder produces float vectors for texts. Document and query embeddings
// use different input types so the model can optimize each side of the
// retrieval.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CohereEmbedder implements Embedder against the Cohere Embed v2 API.
type CohereEmbedder struct {
	client *cohereclient.Client
	model  string
}

var _ Embedder = (*CohereEmbedder)(nil)

// NewCohereEmbedder creates an embedder from the embedding configuration.
func NewCohereEmbedder(cfg config.Embedding) (*CohereEmbedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("cohere api key required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("embedding model required")
	}
	return &CohereEmbedder{
		client: cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		model:  model,
	}, nil
}

// ModelName reports the configured embedding model.
func (c *CohereEmbedder) ModelName() string { return c.model }

// EmbedDocuments embeds a batch of document texts.
func (c *CohereEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts, cohere.EmbedInputTypeSearchDocument)
}

// EmbedQuery embeds a single search query.
func (c *CohereEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embed(ctx, []string{text}, cohere.EmbedInputTypeSearchQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *CohereEmbedder) embed(ctx context.Context, texts []string, inputType cohere.EmbedInputType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          texts,
		Model:          c.model,
		InputType:      inputType,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed: no float embeddings in response")
	}
	floats := resp.Embeddings.Float
	if len(floats) != len(texts) {
		return nil, fmt.Errorf("cohere embed: got %d embeddings for %d texts", len(floats), len(texts))
	}
	out := make([][]float32, len(floats))
	for i, vec := range floats {
		fv := make([]float32, len(vec))
		for j, v := range vec {
			fv[j] = float32(v)
		}
		out[i] = fv
	}
	return out, nil
}
