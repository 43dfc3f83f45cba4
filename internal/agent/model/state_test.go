package model

import (
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func exchanges(n int) []Exchange {
	out := make([]Exchange, n)
	for i := range out {
		out[i] = Exchange{User: fmt.Sprintf("u%d", i), AI: fmt.Sprintf("a%d", i)}
	}
	return out
}

func TestTrimHistoryDropsOldest(t *testing.T) {
	got := TrimHistory(exchanges(5), 3)
	assert.Equal(t, []Exchange{{"u2", "a2"}, {"u3", "a3"}, {"u4", "a4"}}, got)
	assert.Nil(t, TrimHistory(nil, 3))
	assert.Nil(t, TrimHistory(exchanges(2), 0))
}

func TestTrimHistoryCopies(t *testing.T) {
	src := exchanges(2)
	got := TrimHistory(src, 5)
	got[0].User = "changed"
	assert.Equal(t, "u0", src[0].User)
}

func TestNormalize(t *testing.T) {
	limits := Limits{HistoryCap: 2, MessageLimit: 3}

	tests := []struct {
		name string
		in   ConversationState
		want ConversationState
	}{
		{
			name: "fresh state untouched",
			in:   NewConversationState(),
			want: NewConversationState(),
		},
		{
			name: "unset tone forces awaiting tone",
			in:   ConversationState{Stage: StageFreeForm},
			want: ConversationState{Stage: StageAwaitingTone},
		},
		{
			name: "tone with awaiting tone moves to topic",
			in:   ConversationState{Tone: ToneCasual, Stage: StageAwaitingTone},
			want: ConversationState{Tone: ToneCasual, Stage: StageAwaitingTopic},
		},
		{
			name: "oversized history and count over limit",
			in:   ConversationState{Tone: ToneProfessional, Stage: StageFreeForm, History: exchanges(4), MessageCount: 4},
			want: ConversationState{Tone: ToneProfessional, Stage: StageFreeForm, History: exchanges(4)[2:], MessageCount: 4, LimitReached: true},
		},
		{
			name: "limit flag never cleared",
			in:   ConversationState{Tone: ToneProfessional, Stage: StageFreeForm, MessageCount: 0, LimitReached: true},
			want: ConversationState{Tone: ToneProfessional, Stage: StageFreeForm, MessageCount: 0, LimitReached: true},
		},
		{
			name: "negative count clamped",
			in:   ConversationState{Stage: StageAwaitingTone, MessageCount: -5},
			want: ConversationState{Stage: StageAwaitingTone},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(limits))
		})
	}
}

func TestRecentHistory(t *testing.T) {
	s := ConversationState{History: exchanges(4)}
	assert.Equal(t, exchanges(4)[2:], s.RecentHistory(2))
	assert.Nil(t, s.RecentHistory(0))
}

func TestLimitsDefaults(t *testing.T) {
	l := Limits{}.WithDefaults()
	assert.Equal(t, DefaultHistoryCap, l.HistoryCap)
	assert.Equal(t, DefaultMessageLimit, l.MessageLimit)
	assert.Equal(t, 0, l.PromptTurns)
}

func TestComputeCost(t *testing.T) {
	usage := &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 2_000_000}
	in, out, total := ComputeCost(usage, ResolvePricing("gemini-2.5-flash"))
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 5.00, out, 1e-9)
	assert.InDelta(t, 5.30, total, 1e-9)

	_, _, total = ComputeCost(usage, ResolvePricing("unknown"))
	assert.Zero(t, total)
	_, _, total = ComputeCost(nil, Pricing{})
	assert.Zero(t, total)
}
