package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sakinah/backend/internal/emotion"
	"sakinah/backend/internal/llm"
	"sakinah/backend/internal/logging"
	"sakinah/backend/internal/store"
)

// LLMFailurePlaceholder is stored and returned as the assistant reply when
// the language model cannot answer.
const LLMFailurePlaceholder = "❌ خطأ في LLM: تعذر الحصول على رد، حاول مرة أخرى"

const persistAttempts = 3

type TurnResult struct {
	ChatID    string
	Response  string
	Emotion   emotion.Result
	LLMFailed bool
}

// Turn handles one user message. All external calls happen before the
// write; the chat (when new) and both messages are then stored in a single
// transaction, so a completed turn always adds exactly two messages.
func (s *Service) Turn(ctx context.Context, userID, chatID, message string) (TurnResult, error) {
	l := logging.Ctx(ctx)
	message = strings.TrimSpace(message)
	if message == "" {
		return TurnResult{}, ErrEmptyMessage
	}
	receivedAt := s.now()

	textEN, err := s.arToEn.Translate(ctx, message)
	if err != nil {
		l.Error().Err(err).Str(logging.FieldStage, "translate_ar_en").Msg("input translation failed")
		return TurnResult{}, fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	var existing *store.Chat
	var history []llm.Turn
	if strings.TrimSpace(chatID) != "" {
		chat, err := s.store.ChatForUser(ctx, chatID, userID)
		switch {
		case err == nil:
			existing = chat
		case errors.Is(err, store.ErrNotFound):
			l.Info().Str(logging.FieldChatID, chatID).Msg("chat not found for user; starting a new chat")
		default:
			return TurnResult{}, fmt.Errorf("load chat: %w", err)
		}
	}
	if existing != nil {
		msgs, err := s.store.Messages(ctx, existing.ID)
		if err != nil {
			return TurnResult{}, fmt.Errorf("load history: %w", err)
		}
		history = englishTurns(msgs)
	}
	history = append(history, llm.Turn{Role: store.RoleUser, Content: textEN})

	mood, err := s.classifier.Classify(ctx, textEN)
	if err != nil {
		l.Warn().Err(err).Str(logging.FieldStage, "emotion").Msg("emotion classification failed; assuming neutral")
		mood = emotion.NeutralResult()
	}

	result := TurnResult{Emotion: mood}
	replyEN, err := s.llm.Reply(ctx, history, mood.Dominant)
	var replyAR string
	if err != nil {
		l.Error().Err(err).Str(logging.FieldStage, "llm_reply").Msg("llm reply failed; storing placeholder")
		replyEN = ""
		replyAR = LLMFailurePlaceholder
		result.LLMFailed = true
	} else {
		replyAR, err = s.enToAr.Translate(ctx, replyEN)
		if err != nil || strings.TrimSpace(replyAR) == "" {
			l.Warn().Err(err).Str(logging.FieldStage, "translate_en_ar").Msg("reply translation failed; returning english text")
			replyAR = replyEN
		}
	}

	repliedAt := s.now()
	var chatIDOut string
	for attempt := 1; ; attempt++ {
		chatIDOut, err = s.persistTurn(ctx, userID, existing, []*store.Message{
			{Role: store.RoleUser, ContentAR: message, ContentEN: textEN, CreatedAt: receivedAt},
			{Role: store.RoleAssistant, ContentAR: replyAR, ContentEN: replyEN, CreatedAt: repliedAt},
		})
		if err == nil || !errors.Is(err, store.ErrConflict) || attempt == persistAttempts {
			break
		}
		l.Warn().Err(err).Int("attempt", attempt).Msg("concurrent write on chat; retrying")
	}
	if err != nil {
		return TurnResult{}, fmt.Errorf("persist turn: %w", err)
	}

	result.ChatID = chatIDOut
	result.Response = replyAR
	return result, nil
}

func (s *Service) persistTurn(ctx context.Context, userID string, existing *store.Chat, msgs []*store.Message) (string, error) {
	var chatID string
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if existing != nil {
			chatID = existing.ID
		} else {
			chat, err := tx.CreateChat(ctx, userID)
			if err != nil {
				return err
			}
			chatID = chat.ID
		}
		if err := tx.AppendMessages(ctx, chatID, msgs...); err != nil {
			return err
		}
		return tx.TouchChat(ctx, chatID, msgs[len(msgs)-1].CreatedAt)
	})
	return chatID, err
}
