// Package chat runs the conversation and summarization pipelines on top of
// translation, emotion classification, the LLM and the store.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sakinah/backend/internal/emotion"
	"sakinah/backend/internal/llm"
	"sakinah/backend/internal/store"
	"sakinah/backend/internal/translate"
)

var (
	ErrChatNotFound  = errors.New("Chat not found")
	ErrEmptyChat     = errors.New("No messages in chat")
	ErrEmptyMessage  = errors.New("message is required")
	ErrTranslation   = errors.New("Translation service unavailable")
	ErrSummaryFailed = errors.New("LLM summarization failed")
)

// LLM is the language model surface the pipelines need.
type LLM interface {
	Reply(ctx context.Context, history []llm.Turn, emotion string) (string, error)
	Summarize(ctx context.Context, history []llm.Turn) (string, error)
}

type Deps struct {
	Store           *store.Store
	ArabicToEnglish translate.Translator
	EnglishToArabic translate.Translator
	Classifier      emotion.Classifier
	LLM             LLM
}

type Service struct {
	store      *store.Store
	arToEn     translate.Translator
	enToAr     translate.Translator
	classifier emotion.Classifier
	llm        LLM
	now        func() time.Time
}

func NewService(d Deps) *Service {
	return &Service{
		store:      d.Store,
		arToEn:     d.ArabicToEnglish,
		enToAr:     d.EnglishToArabic,
		classifier: d.Classifier,
		llm:        d.LLM,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListChats(ctx context.Context, userID string) ([]store.Chat, error) {
	return s.store.ListChats(ctx, userID)
}

// History returns the messages of an owned chat in conversational order.
func (s *Service) History(ctx context.Context, userID, chatID string) ([]store.Message, error) {
	if _, err := s.ownedChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.store.Messages(ctx, chatID)
}

func (s *Service) Delete(ctx context.Context, userID, chatID string) error {
	err := s.store.DeleteChat(ctx, chatID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrChatNotFound
	}
	return err
}

func (s *Service) ownedChat(ctx context.Context, userID, chatID string) (*store.Chat, error) {
	chat, err := s.store.ChatForUser(ctx, chatID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}
	return chat, nil
}

func englishTurns(msgs []store.Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		if m.ContentEN == "" {
			continue
		}
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.ContentEN})
	}
	return turns
}
