package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/bridgetext/coach-server/pkg/vectorstore"
)

// Payload keys that may hold the snippet text, in lookup order.
var contentKeys = []string{"text", "page_content", "content"}

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the server address, e.g. "https://example.qdrant.io:6334".
	// A missing scheme means https.
	URL string

	CollectionName string
	APIKey         string
}

// Client implements vectorstore.VectorStore for Qdrant.
type Client struct {
	client         *qdrant.Client
	collectionName string
}

// New creates a new Qdrant client.
func New(cfg Config) (*Client, error) {
	qcfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CollectionName == "" {
		return nil, fmt.Errorf("qdrant collection name is required")
	}

	qdrantClient, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Client{
		client:         qdrantClient,
		collectionName: cfg.CollectionName,
	}, nil
}

func clientConfig(cfg Config) (*qdrant.Config, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	port := 6334 // gRPC
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}

	return &qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	}, nil
}

// Search implements vectorstore.VectorStore.
func (c *Client) Search(ctx context.Context, vector []float32, filter vectorstore.SearchFilter, limit int) ([]vectorstore.SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	limitUint64 := uint64(limit)
	req := &qdrant.QueryPoints{
		CollectionName: c.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limitUint64,
		Filter:         buildQdrantFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter.MinScore > 0 {
		minScore := filter.MinScore
		req.ScoreThreshold = &minScore
	}

	points, err := c.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	results := make([]vectorstore.SearchResult, 0, len(points))
	for _, point := range points {
		if filter.MinScore > 0 && point.Score < filter.MinScore {
			continue
		}
		results = append(results, toResult(point.GetId(), point.Score, point.Payload))
	}
	return results, nil
}

// Close implements vectorstore.VectorStore.
func (c *Client) Close() error {
	return c.client.Close()
}

func toResult(id *qdrant.PointId, score float32, payload map[string]*qdrant.Value) vectorstore.SearchResult {
	result := vectorstore.SearchResult{
		ID:       pointID(id),
		Score:    score,
		Metadata: make(map[string]any),
	}

	for k, v := range payload {
		result.Metadata[k] = extractValue(v)
	}
	for _, k := range contentKeys {
		if s := payload[k].GetStringValue(); s != "" {
			result.Content = s
			delete(result.Metadata, k)
			break
		}
	}
	return result
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	if n := id.GetNum(); n != 0 {
		return strconv.FormatUint(n, 10)
	}
	return ""
}

// buildQdrantFilter converts SearchFilter to a Qdrant filter, nil when empty.
func buildQdrantFilter(filter vectorstore.SearchFilter) *qdrant.Filter {
	if len(filter.Metadata) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(filter.Metadata))
	for key, value := range filter.Metadata {
		conditions = append(conditions, buildMatchCondition(key, value))
	}
	return &qdrant.Filter{Must: conditions}
}

func buildMatchCondition(key string, value any) *qdrant.Condition {
	var match *qdrant.Match

	switch v := value.(type) {
	case string:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: v}}
	case []string:
		keywords := make([]string, len(v))
		copy(keywords, v)
		match = &qdrant.Match{MatchValue: &qdrant.Match_Keywords{
			Keywords: &qdrant.RepeatedStrings{Strings: keywords},
		}}
	case int:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Integer{Integer: int64(v)}}
	case int64:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Integer{Integer: v}}
	case bool:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Boolean{Boolean: v}}
	default:
		match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: fmt.Sprintf("%v", v)}}
	}

	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key:   key,
				Match: match,
			},
		},
	}
}

func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}

	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	default:
		return nil
	}
}

var _ vectorstore.VectorStore = (*Client)(nil)
