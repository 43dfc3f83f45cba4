package nodes

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/bridgetext/coach-server/internal/agent/model"
)

const (
	contextUnavailable = "No context available."
	contextNotFound    = "No relevant context found."
	historyEmpty       = "No previous messages."
)

// formatContext joins document texts with blank lines.
func formatContext(docs []*schema.Document, failed bool) string {
	if failed {
		return contextUnavailable
	}
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		if text := strings.TrimSpace(d.Content); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return contextNotFound
	}
	return strings.Join(parts, "\n\n")
}

// formatHistory quotes the last n exchanges as "User:/AI:" lines.
func formatHistory(history []model.Exchange, n int) string {
	recent := model.ConversationState{History: history}.RecentHistory(n)
	if len(recent) == 0 {
		return historyEmpty
	}
	lines := make([]string, 0, len(recent))
	for _, ex := range recent {
		lines = append(lines, "User: "+ex.User+"\nAI: "+ex.AI)
	}
	return strings.Join(lines, "\n")
}
