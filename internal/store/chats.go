package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) CreateChat(ctx context.Context, userID string) (*Chat, error) {
	chat := &Chat{UserID: userID}
	if err := s.db.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, translateError(err)
	}
	return chat, nil
}

// ChatForUser returns the chat only when it belongs to userID. Unknown,
// malformed and foreign ids all yield ErrNotFound.
func (s *Store) ChatForUser(ctx context.Context, chatID, userID string) (*Chat, error) {
	if !validID(chatID) {
		return nil, ErrNotFound
	}
	var chat Chat
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		First(&chat).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &chat, nil
}

// ListChats returns the user's chats oldest first with their summaries.
func (s *Store) ListChats(ctx context.Context, userID string) ([]Chat, error) {
	var chats []Chat
	err := s.db.WithContext(ctx).
		Preload("Summary").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&chats).Error
	if err != nil {
		return nil, translateError(err)
	}
	return chats, nil
}

func (s *Store) TouchChat(ctx context.Context, chatID string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", at).Error
	return translateError(err)
}

// DeleteChat removes an owned chat together with its messages and summary.
func (s *Store) DeleteChat(ctx context.Context, chatID, userID string) error {
	if !validID(chatID) {
		return ErrNotFound
	}
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.ChatForUser(ctx, chatID, userID); err != nil {
			return err
		}
		db := tx.db.WithContext(ctx)
		if err := db.Where("chat_id = ?", chatID).Delete(&ChatSummary{}).Error; err != nil {
			return translateError(err)
		}
		if err := db.Where("chat_id = ?", chatID).Delete(&Message{}).Error; err != nil {
			return translateError(err)
		}
		result := db.Where("id = ? AND user_id = ?", chatID, userID).Delete(&Chat{})
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
