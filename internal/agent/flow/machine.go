package flow

import (
	"github.com/bridgetext/coach-server/internal/agent/model"
)

// Input is one incoming event: either chat text or an explicit clear action.
type Input struct {
	Text  string
	Clear bool
}

// Machine computes conversation transitions. It holds only configuration
// and is safe for concurrent use.
type Machine struct {
	limits model.Limits
}

func NewMachine(limits model.Limits) *Machine {
	return &Machine{limits: limits.WithDefaults()}
}

// Limits returns the effective limits.
func (m *Machine) Limits() model.Limits {
	return m.limits
}

// New returns the empty state.
func (m *Machine) New() model.ConversationState {
	return model.NewConversationState()
}

// Step computes the next state and the directive for the turn. It never
// records history or increments the message count: that happens in Record,
// once the orchestrator has a generated reply.
func (m *Machine) Step(prior model.ConversationState, in Input) (model.ConversationState, model.Directive) {
	if in.Clear {
		return m.New(), model.Directive{
			Action:       model.ActionCleared,
			Reply:        clearedReply,
			QuickReplies: []string{},
		}
	}

	state := prior.Normalize(m.limits)

	switch state.Stage {
	case model.StageAwaitingTone:
		tone, ok := MatchTone(in.Text)
		if !ok {
			return state, m.offerTones()
		}
		state.Tone = tone
		state.Stage = model.StageAwaitingTopic
		return state, model.Directive{
			Action:       model.ActionOfferTopics,
			Reply:        toneChosenReply(tone),
			QuickReplies: TopicLabels(),
			Tone:         tone,
		}

	case model.StageAwaitingTopic:
		topic, ok := MatchTopic(in.Text)
		if !ok {
			return state, model.Directive{
				Action:       model.ActionOfferTopics,
				Reply:        topicRepromptReply,
				QuickReplies: TopicLabels(),
				Tone:         state.Tone,
			}
		}
		state.Stage = model.StageFreeForm
		if state.LimitReached {
			return state, m.limited(state)
		}
		return state, model.Directive{
			Action:       model.ActionGenerate,
			QuickReplies: []string{},
			Tone:         state.Tone,
			Topic:        topic,
		}

	default:
		if state.LimitReached {
			return state, m.limited(state)
		}
		return state, model.Directive{
			Action:       model.ActionGenerate,
			QuickReplies: []string{},
			Tone:         state.Tone,
		}
	}
}

// Record commits a successfully generated exchange. The history is capped
// oldest-first and the limit flag is raised once the count reaches the
// threshold. It reports whether this exchange is the one that reached it.
func (m *Machine) Record(state model.ConversationState, ex model.Exchange) (model.ConversationState, bool) {
	wasLimited := state.LimitReached

	history := make([]model.Exchange, 0, len(state.History)+1)
	history = append(history, state.History...)
	history = append(history, ex)
	state.History = model.TrimHistory(history, m.limits.HistoryCap)

	state.MessageCount++
	if state.MessageCount >= m.limits.MessageLimit {
		state.LimitReached = true
	}
	return state, state.LimitReached && !wasLimited
}

// QuickReplies returns the quick replies a client should show for state.
// Used to keep retry context after a failed turn.
func (m *Machine) QuickReplies(state model.ConversationState) []string {
	state = state.Normalize(m.limits)
	if state.LimitReached {
		return []string{}
	}
	switch state.Stage {
	case model.StageAwaitingTone:
		return ToneLabels()
	case model.StageAwaitingTopic:
		return TopicLabels()
	default:
		return []string{}
	}
}

// LimitNotice returns the notice for the configured limit.
func (m *Machine) LimitNotice() string {
	return LimitNotice(m.limits.MessageLimit)
}

func (m *Machine) offerTones() model.Directive {
	return model.Directive{
		Action:       model.ActionOfferTones,
		Reply:        toneQuestionReply,
		QuickReplies: ToneLabels(),
	}
}

func (m *Machine) limited(state model.ConversationState) model.Directive {
	return model.Directive{
		Action:       model.ActionLimited,
		Reply:        m.LimitNotice(),
		QuickReplies: []string{},
		Tone:         state.Tone,
	}
}
