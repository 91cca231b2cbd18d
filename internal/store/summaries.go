package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

// UpsertSummary inserts or replaces the single summary of a chat in one
// statement. On return summary holds the stored row.
func (s *Store) UpsertSummary(ctx context.Context, summary *ChatSummary) error {
	now := time.Now().UTC()
	summary.UpdatedAt = now
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = now
	}

	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "summary", "dominant_emotion", "updated_at"}),
	}).Create(summary).Error
	if err != nil {
		return translateError(err)
	}

	stored, err := s.SummaryForChat(ctx, summary.ChatID)
	if err != nil {
		return err
	}
	*summary = *stored
	return nil
}

func (s *Store) SummaryForChat(ctx context.Context, chatID string) (*ChatSummary, error) {
	var summary ChatSummary
	if err := s.db.WithContext(ctx).First(&summary, "chat_id = ?", chatID).Error; err != nil {
		return nil, translateError(err)
	}
	return &summary, nil
}
