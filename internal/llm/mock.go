package llm

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockChatModel answers without any network access. Summarization prompts
// get a well-formed Title/Summary block; everything else is echoed.
type MockChatModel struct{}

var _ model.BaseChatModel = MockChatModel{}

func (MockChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	var system, lastUser string
	for _, msg := range input {
		switch msg.Role {
		case schema.System:
			system = msg.Content
		case schema.User:
			lastUser = strings.TrimSpace(msg.Content)
		}
	}

	if strings.Contains(system, summaryFormatMarker) {
		return schema.AssistantMessage(
			"Title: Talking Through Recent Stress\nSummary: The user shared how they have been feeling and the assistant offered support.",
			nil,
		), nil
	}

	if lastUser == "" {
		lastUser = "No message provided."
	}
	lowered := strings.ToLower(lastUser)
	answer := "Mock response: " + lastUser
	if strings.Contains(lowered, "suicid") || strings.Contains(lowered, "end my life") {
		answer = "I'm really sorry you're feeling this way. You deserve support right now; please reach out to someone you trust or a local crisis line."
	}
	return schema.AssistantMessage(answer, nil), nil
}

func (m MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}
