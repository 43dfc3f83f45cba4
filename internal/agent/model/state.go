package model

import "strings"

// Tone is the conversational register chosen by the user.
type Tone string

const (
	ToneUnset        Tone = ""
	ToneProfessional Tone = "Professional"
	ToneCasual       Tone = "Casual"
)

// Valid reports whether t is one of the known tones, including unset.
func (t Tone) Valid() bool {
	switch t {
	case ToneUnset, ToneProfessional, ToneCasual:
		return true
	}
	return false
}

// Label is the lower-cased tone used inside replies ("I'll keep it casual").
func (t Tone) Label() string {
	return strings.ToLower(string(t))
}

// Stage is the phase of the guided conversation.
type Stage string

const (
	StageAwaitingTone  Stage = "awaiting_tone"
	StageAwaitingTopic Stage = "awaiting_topic"
	StageFreeForm      Stage = "free_form"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageAwaitingTone, StageAwaitingTopic, StageFreeForm:
		return true
	}
	return false
}

// Exchange is one substantive user/coach turn.
type Exchange struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

// ConversationState is everything the server remembers about one user.
// It travels inside the session token or, in store mode, in the state repository.
type ConversationState struct {
	History      []Exchange `json:"history,omitempty"`
	Tone         Tone       `json:"tone,omitempty"`
	Stage        Stage      `json:"stage"`
	MessageCount int        `json:"message_count"`
	LimitReached bool       `json:"limit_reached,omitempty"`
}

// NewConversationState returns the empty state issued to new or cleared conversations.
func NewConversationState() ConversationState {
	return ConversationState{Stage: StageAwaitingTone}
}

// Normalize re-enforces the state invariants on data that came from outside
// the process. History is trimmed oldest-first, the limit flag is raised when
// the count is at the threshold and the stage is reconciled with the tone.
func (s ConversationState) Normalize(limits Limits) ConversationState {
	limits = limits.withDefaults()

	s.History = TrimHistory(s.History, limits.HistoryCap)
	if s.MessageCount < 0 {
		s.MessageCount = 0
	}
	if s.MessageCount >= limits.MessageLimit {
		s.LimitReached = true
	}

	switch {
	case s.Tone == ToneUnset:
		s.Stage = StageAwaitingTone
	case s.Stage == StageAwaitingTone || !s.Stage.Valid():
		s.Stage = StageAwaitingTopic
	}
	return s
}

// RecentHistory returns the last n exchanges.
func (s ConversationState) RecentHistory(n int) []Exchange {
	if n <= 0 || len(s.History) == 0 {
		return nil
	}
	return TrimHistory(s.History, n)
}

// TrimHistory keeps at most max of the newest exchanges in a fresh slice.
// An empty result is nil so encoded and decoded states compare equal.
func TrimHistory(history []Exchange, max int) []Exchange {
	if len(history) == 0 || max <= 0 {
		return nil
	}
	source := history
	if len(history) > max {
		source = history[len(history)-max:]
	}
	result := make([]Exchange, len(source))
	copy(result, source)
	return result
}
