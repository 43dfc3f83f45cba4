package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgetext/coach-server/pkg/vectorstore"
)

func str(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func TestClientConfig(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		host    string
		port    int
		tls     bool
		wantErr bool
	}{
		{name: "bare host defaults to tls", url: "xyz.cloud.qdrant.io", host: "xyz.cloud.qdrant.io", port: 6334, tls: true},
		{name: "http with port", url: "http://localhost:6334", host: "localhost", port: 6334},
		{name: "https custom port", url: "https://q.example.com:7000", host: "q.example.com", port: 7000, tls: true},
		{name: "empty", url: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := clientConfig(Config{URL: tt.url, APIKey: "k"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, cfg.Host)
			assert.Equal(t, tt.port, cfg.Port)
			assert.Equal(t, tt.tls, cfg.UseTLS)
			assert.Equal(t, "k", cfg.APIKey)
		})
	}
}

func TestToResultContentKeys(t *testing.T) {
	id := &qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: 42}}

	r := toResult(id, 0.8, map[string]*qdrant.Value{
		"page_content": str("Ask for a 1:1 to reset expectations."),
		"category":     str("feedback"),
	})
	assert.Equal(t, "42", r.ID)
	assert.Equal(t, float32(0.8), r.Score)
	assert.Equal(t, "Ask for a 1:1 to reset expectations.", r.Content)
	assert.Equal(t, map[string]any{"category": "feedback"}, r.Metadata)

	r = toResult(nil, 0.5, map[string]*qdrant.Value{
		"text":         str("primary"),
		"page_content": str("secondary"),
	})
	assert.Equal(t, "primary", r.Content)
	assert.Equal(t, "secondary", r.Metadata["page_content"])
	assert.Empty(t, r.ID)

	r = toResult(nil, 0.5, nil)
	assert.Empty(t, r.Content)
}

func TestBuildQdrantFilter(t *testing.T) {
	assert.Nil(t, buildQdrantFilter(vectorstore.SearchFilter{MinScore: 0.3}))

	f := buildQdrantFilter(vectorstore.SearchFilter{Metadata: map[string]any{"topic": "Career growth"}})
	require.NotNil(t, f)
	require.Len(t, f.Must, 1)
	field := f.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, "topic", field.Key)
	assert.Equal(t, "Career growth", field.Match.GetKeyword())

	f = buildQdrantFilter(vectorstore.SearchFilter{Metadata: map[string]any{"tags": []string{"a", "b"}}})
	assert.Equal(t, []string{"a", "b"}, f.Must[0].GetField().Match.GetKeywords().GetStrings())

	f = buildQdrantFilter(vectorstore.SearchFilter{Metadata: map[string]any{"level": 3}})
	assert.Equal(t, int64(3), f.Must[0].GetField().Match.GetInteger())
}
