package flow

import (
	"fmt"
	"strings"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

// Topic labels offered once a tone is chosen.
const (
	TopicWorkRelationships = "Work relationships"
	TopicStressDeadlines   = "Stress & deadlines"
	TopicCareerGrowth      = "Career growth"
	TopicTeamConflicts     = "Team conflicts"
)

const (
	toneQuestionReply = "Before we dive in, how would you like me to respond? Pick the style that feels right for you."
	topicRepromptReply = "What would you like to work on? Pick the topic that's closest to what's on your mind."
	clearedReply       = "Chat history cleared"
	limitNoticeFormat  = "You've reached the free message limit (%d messages). Upgrade to Premium for unlimited conversations! 🚀"
)

// ToneLabels returns the tone quick replies in display order.
func ToneLabels() []string {
	return []string{string(model.ToneProfessional), string(model.ToneCasual)}
}

// TopicLabels returns the topic quick replies in display order.
func TopicLabels() []string {
	return []string{TopicWorkRelationships, TopicStressDeadlines, TopicCareerGrowth, TopicTeamConflicts}
}

// MatchTone maps a message onto a tone, ignoring case and surrounding whitespace.
func MatchTone(text string) (model.Tone, bool) {
	label, ok := matchLabel(text, ToneLabels())
	return model.Tone(label), ok
}

// MatchTopic maps a message onto the canonical topic label.
func MatchTopic(text string) (string, bool) {
	return matchLabel(text, TopicLabels())
}

func matchLabel(text string, labels []string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, label := range labels {
		if strings.EqualFold(text, label) {
			return label, true
		}
	}
	return "", false
}

func toneChosenReply(t model.Tone) string {
	return fmt.Sprintf("Perfect! I'll keep it %s. Let's tackle this together. What would you like to work on?", t.Label())
}

// LimitNotice is appended to the reply that reaches the limit and returned
// in place of a reply afterwards.
func LimitNotice(limit int) string {
	return fmt.Sprintf(limitNoticeFormat, limit)
}
