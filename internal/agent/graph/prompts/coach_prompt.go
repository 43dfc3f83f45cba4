package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

//go:embed template/coach_prompt.txt
var coachSystemPrompt string

const casualInstruction = `• Use a CASUAL, Gen Z tone: relaxed, conversational, like texting a smart friend
• Use phrases like: "That sucks", "Ugh that's annoying", "Yeah I get it", "Super frustrating"
• Use contractions: "you're", "that's", "don't", "can't"
• Keep it SHORT and NATURAL - sound like you're texting, not writing an essay
• Be supportive but chill: "Okay let's figure this out" instead of "I understand your concern"
• Example casual response: "Ugh that's super frustrating. So the main issue is they're ghosting you? What part bothers you most - them ignoring you or how it makes you look?"
`

const professionalInstruction = `• Use a PROFESSIONAL tone: measured, empathetic, but formal like a workplace mentor or HR coach
• Use complete sentences with proper grammar
• Use phrases like: "I understand this is challenging", "That's a difficult situation", "Let's explore this together"
• Be empathetic but maintain professional distance
• Avoid slang or Gen Z casual language
• Example professional response: "That's a challenging situation. It sounds like communication barriers are impacting your work. Have you had an opportunity to address this directly with your colleague?"
`

// CoachVars is the data the coaching prompt is rendered with.
type CoachVars struct {
	Tone    model.Tone
	Topic   string
	Context string
	History string
	Message string
}

// ToneInstruction falls back to the professional register when no tone is set.
func ToneInstruction(t model.Tone) string {
	if t == model.ToneCasual {
		return casualInstruction
	}
	return professionalInstruction
}

var coachTemplate = prompt.FromMessages(
	schema.GoTemplate,
	schema.SystemMessage(coachSystemPrompt),
	schema.UserMessage("{{.Message}}"),
)

// RenderCoach renders the system prompt followed by the user's message.
// Rendering goes through the eino prompt component so prompt callbacks fire.
func RenderCoach(ctx context.Context, v CoachVars) ([]*schema.Message, error) {
	msgs, err := coachTemplate.Format(ctx, map[string]any{
		"ToneInstruction": ToneInstruction(v.Tone),
		"Topic":           v.Topic,
		"Context":         v.Context,
		"History":         v.History,
		"Message":         v.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("coach prompt render: %w", err)
	}
	if len(msgs) != 2 {
		return nil, fmt.Errorf("coach prompt render: expected 2 messages, got %d", len(msgs))
	}
	return msgs, nil
}
