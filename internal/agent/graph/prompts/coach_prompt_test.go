package prompts

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

func TestRenderCoach(t *testing.T) {
	msgs, err := RenderCoach(context.Background(), CoachVars{
		Tone:    model.ToneCasual,
		Topic:   "Career growth",
		Context: "Scenario: asking for a promotion.",
		History: "User: hi\nAI: hey!",
		Message: "how do I ask for a raise? {{.Context}}",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	sys := msgs[0]
	assert.Equal(t, schema.System, sys.Role)
	assert.Contains(t, sys.Content, "STEP Framework")
	assert.Contains(t, sys.Content, "CASUAL, Gen Z tone")
	assert.Contains(t, sys.Content, `picked "Career growth"`)
	assert.Contains(t, sys.Content, "Scenario: asking for a promotion.")
	assert.Contains(t, sys.Content, "User: hi\nAI: hey!")

	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "how do I ask for a raise? {{.Context}}", msgs[1].Content, "user text is data, not template")
}

func TestRenderCoachWithoutTopic(t *testing.T) {
	msgs, err := RenderCoach(context.Background(), CoachVars{Context: "c", History: "h", Message: "m"})
	require.NoError(t, err)
	assert.NotContains(t, msgs[0].Content, "FOCUS AREA")
	assert.Contains(t, msgs[0].Content, "PROFESSIONAL tone")
}
