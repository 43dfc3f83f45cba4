package model

import "time"

const (
	DefaultHistoryCap   = 10
	DefaultMessageLimit = 10
	DefaultPromptTurns  = 2
)

// Limits bounds a single conversation.
type Limits struct {
	// HistoryCap is the maximum number of exchanges kept in state.
	HistoryCap int
	// MessageLimit is the number of generated turns after which LimitReached is set.
	MessageLimit int
	// PromptTurns is how many recent exchanges are quoted into the prompt.
	PromptTurns int
}

func (l Limits) withDefaults() Limits {
	if l.HistoryCap <= 0 {
		l.HistoryCap = DefaultHistoryCap
	}
	if l.MessageLimit <= 0 {
		l.MessageLimit = DefaultMessageLimit
	}
	if l.PromptTurns < 0 {
		l.PromptTurns = DefaultPromptTurns
	}
	return l
}

// WithDefaults fills non-positive limits with their defaults.
func (l Limits) WithDefaults() Limits {
	return l.withDefaults()
}

// ================ Config ================
type ConversationConfig struct {
	HistoryCap        int           `envconfig:"CONVERSATION_HISTORY_CAP" default:"10"`
	MessageLimit      int           `envconfig:"CONVERSATION_MESSAGE_LIMIT" default:"10"`
	PromptTurns       int           `envconfig:"CONVERSATION_PROMPT_TURNS" default:"2"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`
}

// Limits projects the conversation config onto Limits.
func (c ConversationConfig) Limits() Limits {
	return Limits{
		HistoryCap:   c.HistoryCap,
		MessageLimit: c.MessageLimit,
		PromptTurns:  c.PromptTurns,
	}.withDefaults()
}

type SessionConfig struct {
	// Mode is "token" (signed state replayed by the client) or "store" (server-side entries).
	Mode        string        `envconfig:"SESSION_MODE" default:"token"`
	// TokenSecret signs tokens. Required in token mode only.
	TokenSecret string        `envconfig:"SESSION_TOKEN_SECRET"`
	TokenTTL    time.Duration `envconfig:"SESSION_TOKEN_TTL" default:"24h"`
	// Store selects the backend in store mode: "redis" or "memory".
	Store    string        `envconfig:"SESSION_STORE" default:"redis"`
	StoreTTL time.Duration `envconfig:"SESSION_STORE_TTL" default:"24h"`
}

const (
	SessionModeToken = "token"
	SessionModeStore = "store"
)

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"200"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.7"`
}

type EmbeddingConfig struct {
	Model      string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	Dimensions int32  `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
}

type RetrievalConfig struct {
	QdrantURL    string  `envconfig:"QDRANT_URL" required:"true"`
	QdrantAPIKey string  `envconfig:"QDRANT_API_KEY"`
	Collection   string  `envconfig:"QDRANT_COLLECTION" default:"bridgetext_scenarios"`
	TopK         int     `envconfig:"RETRIEVAL_TOP_K" default:"3"`
	MinScore     float64 `envconfig:"RETRIEVAL_MIN_SCORE" default:"0"`
	// TopicField is the payload key matched against the selected topic.
	// Empty disables topic filtering.
	TopicField   string  `envconfig:"RETRIEVAL_TOPIC_FIELD"`
}

type ServerConfig struct {
	Port               string `envconfig:"PORT" default:"5001"`
	CorsAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}
