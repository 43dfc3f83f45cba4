package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/bridgetext/coach-server/pkg/vectorstore"
)

type fakeModels struct {
	model  string
	cfg    *genai.EmbedContentConfig
	n      int
	values []float32
	err    error
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.model, f.cfg, f.n = model, cfg, len(contents)
	if f.err != nil {
		return nil, f.err
	}
	resp := &genai.EmbedContentResponse{}
	for range contents {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: f.values})
	}
	return resp, nil
}

func TestEmbedder(t *testing.T) {
	fm := &fakeModels{values: []float32{0.5, -0.25}}
	e, err := newEmbedder(fm, EmbedderConfig{Model: "gemini-embedding-001", Dimensions: 2})
	require.NoError(t, err)

	out, err := e.EmbedStrings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, -0.25}, {0.5, -0.25}}, out)
	assert.Equal(t, "gemini-embedding-001", fm.model)
	assert.Equal(t, "RETRIEVAL_QUERY", fm.cfg.TaskType)
	assert.Equal(t, int32(2), *fm.cfg.OutputDimensionality)
	assert.Equal(t, 2, fm.n)

	_, err = e.EmbedStrings(context.Background(), []string{"a"}, embedding.WithModel("other"))
	require.NoError(t, err)
	assert.Equal(t, "other", fm.model)
}

func TestEmbedderErrors(t *testing.T) {
	_, err := newEmbedder(&fakeModels{}, EmbedderConfig{})
	require.Error(t, err)

	e, _ := newEmbedder(&fakeModels{err: errors.New("quota")}, EmbedderConfig{Model: "m"})
	_, err = e.EmbedStrings(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "quota")
}

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0, 0}
	}
	return out, nil
}

type fakeStore struct {
	vector []float32
	filter vectorstore.SearchFilter
	limit  int
	hits   []vectorstore.SearchResult
	err    error
}

func (f *fakeStore) Search(_ context.Context, vector []float32, filter vectorstore.SearchFilter, limit int) ([]vectorstore.SearchResult, error) {
	f.vector, f.filter, f.limit = vector, filter, limit
	return f.hits, f.err
}

func (f *fakeStore) Close() error { return nil }

func TestScenarioRetriever(t *testing.T) {
	store := &fakeStore{hits: []vectorstore.SearchResult{
		{ID: "1", Score: 0.9, Content: "Scenario: a teammate misses deadlines."},
		{ID: "2", Score: 0.7},
		{ID: "3", Score: 0.6, Content: "Scenario: manager gives vague feedback.", Metadata: map[string]any{"topic": "feedback"}},
	}}
	r, err := NewScenarioRetriever(RetrieverConfig{Embedder: fakeEmbedder{}, Store: store, MinScore: 0.2})
	require.NoError(t, err)

	docs, err := r.Retrieve(context.Background(), "my teammate is always late")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].ID)
	assert.InDelta(t, 0.9, docs[0].Score(), 1e-6)
	assert.Equal(t, "feedback", docs[1].MetaData["topic"])

	assert.Equal(t, []float32{1, 0, 0}, store.vector)
	assert.Equal(t, DefaultTopK, store.limit)
	assert.InDelta(t, 0.2, store.filter.MinScore, 1e-6)

	_, err = r.Retrieve(context.Background(), "q", retriever.WithTopK(5), retriever.WithScoreThreshold(0.5))
	require.NoError(t, err)
	assert.Equal(t, 5, store.limit)
	assert.InDelta(t, 0.5, store.filter.MinScore, 1e-6)
}

func TestScenarioRetrieverPayloadFilter(t *testing.T) {
	store := &fakeStore{}
	r, err := NewScenarioRetriever(RetrieverConfig{Embedder: fakeEmbedder{}, Store: store})
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, store.filter.Metadata)

	_, err = r.Retrieve(context.Background(), "q", retriever.WithDSLInfo(map[string]any{"topic": "Career growth"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"topic": "Career growth"}, store.filter.Metadata)
}

func TestScenarioRetrieverErrors(t *testing.T) {
	_, err := NewScenarioRetriever(RetrieverConfig{Store: &fakeStore{}})
	require.Error(t, err)

	r, _ := NewScenarioRetriever(RetrieverConfig{Embedder: fakeEmbedder{err: errors.New("boom")}, Store: &fakeStore{}})
	_, err = r.Retrieve(context.Background(), "q")
	assert.ErrorContains(t, err, "embed query")

	r, _ = NewScenarioRetriever(RetrieverConfig{Embedder: fakeEmbedder{}, Store: &fakeStore{err: errors.New("unavailable")}})
	_, err = r.Retrieve(context.Background(), "q")
	assert.ErrorContains(t, err, "search scenarios")
}
