package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:50;not null;uniqueIndex:users_username_key"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:users_email_key"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	Chats        []Chat    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Chat struct {
	ID        string       `gorm:"type:uuid;primaryKey"`
	UserID    string       `gorm:"type:uuid;not null;index:idx_chats_user_id_created_at,priority:1"`
	CreatedAt time.Time    `gorm:"not null;index:idx_chats_user_id_created_at,priority:2"`
	UpdatedAt time.Time    `gorm:"not null"`
	Messages  []Message    `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Summary   *ChatSummary `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

func (Chat) TableName() string { return "chats" }

func (c *Chat) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Message is one utterance in a chat, stored in both languages.
// Seq is assigned per chat at insert time and breaks created_at ties.
type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	ChatID    string    `gorm:"type:uuid;not null;uniqueIndex:messages_chat_id_seq_key,priority:1"`
	Seq       int       `gorm:"not null;uniqueIndex:messages_chat_id_seq_key,priority:2"`
	Role      string    `gorm:"size:16;not null"`
	ContentAR string    `gorm:"column:content_ar;not null;default:''"`
	ContentEN string    `gorm:"column:content_en;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type ChatSummary struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	ChatID          string    `gorm:"type:uuid;not null;uniqueIndex:chat_summaries_chat_id_key"`
	Title           string    `gorm:"not null"`
	Summary         string    `gorm:"not null"`
	DominantEmotion string    `gorm:"size:32;not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (ChatSummary) TableName() string { return "chat_summaries" }

func (s *ChatSummary) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// AutoMigrate creates the schema through gorm. Production databases are
// migrated with the embedded goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Chat{}, &Message{}, &ChatSummary{})
}
