package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sakinah/backend/internal/chat"
	"sakinah/backend/internal/logging"
)

func (a *App) chatTurn(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload chatRequest
	if !mustJSON(c, &payload) {
		return
	}

	result, err := a.chat.Turn(c.Request.Context(), user.ID, strings.TrimSpace(payload.ChatID), payload.Message)
	if err != nil {
		a.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": result.Response,
		"emotion":  result.Emotion.Scores,
		"chat_id":  result.ChatID,
	})
}

func (a *App) listChats(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chats, err := a.chat.ListChats(c.Request.Context(), user.ID)
	if err != nil {
		a.writeChatError(c, err)
		return
	}

	items := make([]chatListItem, 0, len(chats))
	for _, item := range chats {
		items = append(items, newChatListItem(item))
	}
	c.JSON(http.StatusOK, items)
}

func (a *App) chatMessages(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	msgs, err := a.chat.History(c.Request.Context(), user.ID, strings.TrimSpace(c.Param("chat_id")))
	if err != nil {
		a.writeChatError(c, err)
		return
	}

	items := make([]messageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, newMessageItem(m))
	}
	c.JSON(http.StatusOK, items)
}

func (a *App) deleteChat(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := a.chat.Delete(c.Request.Context(), user.ID, strings.TrimSpace(c.Param("chat_id"))); err != nil {
		a.writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "✅ Chat deleted successfully"})
}

func (a *App) saveConversation(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload saveConversationRequest
	if !mustJSON(c, &payload) {
		return
	}

	result, err := a.chat.Summarize(c.Request.Context(), user.ID, strings.TrimSpace(payload.ChatID))
	if err != nil {
		a.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          chat.SavedMessage,
		"chat_id":          result.ChatID,
		"title":            result.Title,
		"summary":          result.Summary,
		"dominant_emotion": result.DominantEmotion,
	})
}

func (a *App) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrChatNotFound):
		writeError(c, http.StatusNotFound, chat.ErrChatNotFound.Error())
	case errors.Is(err, chat.ErrEmptyChat):
		writeError(c, http.StatusBadRequest, chat.ErrEmptyChat.Error())
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(c, http.StatusBadRequest, chat.ErrEmptyMessage.Error())
	case errors.Is(err, chat.ErrTranslation):
		writeError(c, http.StatusBadGateway, chat.ErrTranslation.Error())
	case errors.Is(err, chat.ErrSummaryFailed):
		writeError(c, http.StatusInternalServerError, chat.ErrSummaryFailed.Error())
	default:
		l := logging.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("chat request failed unclassified")
		writeError(c, http.StatusInternalServerError, "Failed to process chat request")
	}
}
