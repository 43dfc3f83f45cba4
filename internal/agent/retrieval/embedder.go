package retrieval

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"
)

const taskRetrievalQuery = "RETRIEVAL_QUERY"

// contentEmbedder is the slice of *genai.Models the embedder needs.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// EmbedderConfig configures a Gemini query embedder.
type EmbedderConfig struct {
	Model      string
	Dimensions int32
}

// Embedder turns queries into vectors with the Gemini embeddings API.
type Embedder struct {
	models contentEmbedder
	cfg    EmbedderConfig
}

func NewEmbedder(client *genai.Client, cfg EmbedderConfig) (*Embedder, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is required")
	}
	return newEmbedder(client.Models, cfg)
}

func newEmbedder(models contentEmbedder, cfg EmbedderConfig) (*Embedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	return &Embedder{models: models, cfg: cfg}, nil
}

// EmbedStrings implements embedding.Embedder.
func (e *Embedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := embedding.GetCommonOptions(&embedding.Options{Model: &e.cfg.Model}, opts...)

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	cfg := &genai.EmbedContentConfig{TaskType: taskRetrievalQuery}
	if e.cfg.Dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(e.cfg.Dimensions)
	}

	resp, err := e.models.EmbedContent(ctx, *options.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("embed content: expected %d embeddings, got %d", len(texts), got)
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vec := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	return out, nil
}

var _ embedding.Embedder = (*Embedder)(nil)
