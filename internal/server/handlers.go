package server

import (
	"time"

	"sakinah/backend/internal/store"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type chatRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type saveConversationRequest struct {
	ChatID string `json:"chat_id" binding:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// summaryView keeps every key present; fields are null for chats that were
// never summarized.
type summaryView struct {
	ID              *string    `json:"id"`
	Title           *string    `json:"title"`
	Summary         *string    `json:"summary"`
	DominantEmotion *string    `json:"dominant_emotion"`
	CreatedAt       *time.Time `json:"created_at"`
}

type chatListItem struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Summary   summaryView `json:"summary"`
}

type messageItem struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func newChatListItem(c store.Chat) chatListItem {
	item := chatListItem{ID: c.ID, CreatedAt: c.CreatedAt.UTC()}
	if s := c.Summary; s != nil {
		createdAt := s.CreatedAt.UTC()
		item.Summary = summaryView{
			ID:              &s.ID,
			Title:           &s.Title,
			Summary:         &s.Summary,
			DominantEmotion: &s.DominantEmotion,
			CreatedAt:       &createdAt,
		}
	}
	return item
}

func newMessageItem(m store.Message) messageItem {
	return messageItem{
		ID:        m.ID,
		Sender:    m.Role,
		Text:      m.ContentAR,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
