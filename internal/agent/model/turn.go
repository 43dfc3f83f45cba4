package model

// Action tells the orchestrator what to do with a turn.
type Action string

const (
	// ActionOfferTones re-prompts for a tone; no generation.
	ActionOfferTones Action = "offer_tones"
	// ActionOfferTopics prompts for a topic; no generation.
	ActionOfferTopics Action = "offer_topics"
	// ActionGenerate proceeds to retrieval and generation.
	ActionGenerate Action = "generate"
	// ActionLimited suppresses generation because the message limit was reached.
	ActionLimited Action = "limited"
	// ActionCleared reports that the conversation was reset.
	ActionCleared Action = "cleared"
)

// Directive is the state machine's instruction for the current turn.
type Directive struct {
	Action Action
	// Reply is the canned reply for every action except ActionGenerate.
	Reply        string
	QuickReplies []string
	// Tone and Topic are the generation context for ActionGenerate.
	// Topic is set only on the turn that selects it.
	Tone  Tone
	Topic string
}

// Generates reports whether the turn needs the generation pipeline.
func (d Directive) Generates() bool {
	return d.Action == ActionGenerate
}

// GenerationInput is everything the generation pipeline needs for one reply.
type GenerationInput struct {
	Message string
	Tone    Tone
	Topic   string
	History []Exchange
}

// ChatRequest is the inbound chat turn.
type ChatRequest struct {
	Message string  `json:"message"`
	Token   *string `json:"token"`
}

// ChatResponse is returned for every chat turn, including failed ones.
type ChatResponse struct {
	Success      bool     `json:"success"`
	Response     *string  `json:"response"`
	QuickReplies []string `json:"quick_replies"`
	LimitReached bool     `json:"limit_reached"`
	Token        string   `json:"token"`
	Error        *string  `json:"error"`
}

// HistoryResponse projects the stored exchanges.
type HistoryResponse struct {
	History []Exchange `json:"history"`
}

// ClearResponse carries the token of the fresh state.
type ClearResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}
