package retrieval

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	logx "github.com/bridgetext/coach-server/pkg/logger"
	"github.com/bridgetext/coach-server/pkg/vectorstore"
)

const DefaultTopK = 3

// RetrieverConfig configures the scenario retriever.
type RetrieverConfig struct {
	Embedder embedding.Embedder
	Store    vectorstore.VectorStore
	TopK     int
	MinScore float64
}

// ScenarioRetriever finds workplace scenario snippets similar to a user message.
type ScenarioRetriever struct {
	embedder embedding.Embedder
	store    vectorstore.VectorStore
	topK     int
	minScore float64
}

func NewScenarioRetriever(cfg RetrieverConfig) (*ScenarioRetriever, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &ScenarioRetriever{
		embedder: cfg.Embedder,
		store:    cfg.Store,
		topK:     cfg.TopK,
		minScore: cfg.MinScore,
	}, nil
}

// Retrieve implements retriever.Retriever. Hits without text are skipped.
// DSLInfo entries become exact payload matches.
func (r *ScenarioRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK, minScore := r.topK, r.minScore
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK, ScoreThreshold: &minScore}, opts...)

	emb := r.embedder
	if options.Embedding != nil {
		emb = options.Embedding
	}

	vectors, err := emb.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: no vector returned")
	}

	vector := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		vector[i] = float32(v)
	}

	filter := vectorstore.SearchFilter{
		Metadata: options.DSLInfo,
		MinScore: float32(*options.ScoreThreshold),
	}
	hits, err := r.store.Search(ctx, vector, filter, *options.TopK)
	if err != nil {
		return nil, fmt.Errorf("search scenarios: %w", err)
	}

	docs := make([]*schema.Document, 0, len(hits))
	for _, h := range hits {
		if h.Content == "" {
			continue
		}
		doc := &schema.Document{ID: h.ID, Content: h.Content, MetaData: h.Metadata}
		docs = append(docs, doc.WithScore(float64(h.Score)))
	}

	logx.Debug().Int("hits", len(hits)).Int("docs", len(docs)).Msg("retrieved scenario context")
	return docs, nil
}

var _ retriever.Retriever = (*ScenarioRetriever)(nil)
