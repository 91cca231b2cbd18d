package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"sakinah/backend/internal/logging"
)

// Turn is one English utterance of a conversation.
type Turn struct {
	Role    string
	Content string
}

// Service composes the reply and summary prompts and runs them against a
// chat model through compiled eino chains.
type Service struct {
	reply   compose.Runnable[map[string]any, *schema.Message]
	summary compose.Runnable[map[string]any, *schema.Message]
}

func NewService(ctx context.Context, chatModel model.BaseChatModel) (*Service, error) {
	replyTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
	)
	reply, err := compileChain(ctx, replyTemplate, chatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	summaryTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(summaryPrompt),
	)
	summary, err := compileChain(ctx, summaryTemplate, chatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to compile summary chain: %w", err)
	}

	return &Service{reply: reply, summary: summary}, nil
}

func compileChain(ctx context.Context, template prompt.ChatTemplate, chatModel model.BaseChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)
	return chain.Compile(ctx)
}

// Reply answers the last user turn of history, steering tone with the
// dominant emotion.
func (s *Service) Reply(ctx context.Context, history []Turn, emotion string) (string, error) {
	input := map[string]any{
		"system":  replySystemPrompt(emotion),
		"history": historyMessages(history),
	}
	msg, err := s.reply.Invoke(ctx, input, compose.WithChatModelOption(
		model.WithTemperature(replyTemperature),
		model.WithMaxTokens(replyMaxTokens),
	))
	if err != nil {
		return "", fmt.Errorf("failed to run reply chain: %w", err)
	}
	return completionText(ctx, "reply", msg)
}

// Summarize asks for a "Title: ...\nSummary: ..." block describing history.
func (s *Service) Summarize(ctx context.Context, history []Turn) (string, error) {
	input := map[string]any{"conversation": renderConversation(history)}
	msg, err := s.summary.Invoke(ctx, input, compose.WithChatModelOption(
		model.WithTemperature(summaryTemperature),
		model.WithMaxTokens(summaryMaxTokens),
	))
	if err != nil {
		return "", fmt.Errorf("failed to run summary chain: %w", err)
	}
	return completionText(ctx, "summary", msg)
}

func completionText(ctx context.Context, stage string, msg *schema.Message) (string, error) {
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyCompletion
	}
	l := logging.Ctx(ctx)
	evt := l.Debug().Str(logging.FieldStage, stage).Int("length", len(msg.Content))
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		evt = evt.Int("total_tokens", msg.ResponseMeta.Usage.TotalTokens)
	}
	evt.Msg("llm completion")
	return strings.TrimSpace(msg.Content), nil
}

func historyMessages(history []Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(turn.Role) {
		case "user":
			messages = append(messages, schema.UserMessage(content))
		case "assistant":
			messages = append(messages, schema.AssistantMessage(content, nil))
		}
	}
	return messages
}

func renderConversation(history []Turn) string {
	var builder strings.Builder
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		builder.WriteString(turn.Role)
		builder.WriteString(": ")
		builder.WriteString(content)
		builder.WriteByte('\n')
	}
	return strings.TrimRight(builder.String(), "\n")
}
