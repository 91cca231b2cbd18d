package store

import (
	"context"
)

// AppendMessages stores msgs at the end of the chat in the given order.
// Call it inside Transaction so the seq read and the inserts are atomic.
func (s *Store) AppendMessages(ctx context.Context, chatID string, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	db := s.db.WithContext(ctx)

	var maxSeq int
	err := db.Model(&Message{}).
		Where("chat_id = ?", chatID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return translateError(err)
	}

	for i, msg := range msgs {
		msg.ChatID = chatID
		msg.Seq = maxSeq + i + 1
	}
	return translateError(db.Create(msgs).Error)
}

// Messages returns the chat history in conversational order.
func (s *Store) Messages(ctx context.Context, chatID string) ([]Message, error) {
	var msgs []Message
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("seq ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return msgs, nil
}

func (s *Store) CountMessages(ctx context.Context, chatID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	return count, translateError(err)
}
