package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sakinah/backend/internal/store"
	"sakinah/backend/internal/store/storetest"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(storetest.Open(t))
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := &store.User{Username: "layla", Email: "Layla@Example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "layla@example.com", first.Email)

	err := s.CreateUser(ctx, &store.User{Username: "other", Email: "layla@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, store.ErrEmailExists)

	err = s.CreateUser(ctx, &store.User{Username: "layla", Email: "new@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	exists, err := s.EmailExists(ctx, " LAYLA@example.com ")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.UsernameExists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserLookups(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user := storetest.SeedUser(t, s, "omar")

	byID, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "omar", byID.Username)

	byName, err := s.UserByUsername(ctx, "omar")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = s.UserByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.UserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestChatOwnership(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	owner := storetest.SeedUser(t, s, "owner")
	stranger := storetest.SeedUser(t, s, "stranger")

	chat, err := s.CreateChat(ctx, owner.ID)
	require.NoError(t, err)

	got, err := s.ChatForUser(ctx, chat.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)

	_, err = s.ChatForUser(ctx, chat.ID, stranger.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.ChatForUser(ctx, "42", owner.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendMessagesAssignsSequentialSeq(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user := storetest.SeedUser(t, s, "seq")
	chat, err := s.CreateChat(ctx, user.ID)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Transaction(ctx, func(tx *store.Store) error {
		return tx.AppendMessages(ctx, chat.ID,
			&store.Message{Role: store.RoleUser, ContentAR: "مرحبا", ContentEN: "hello", CreatedAt: at},
			&store.Message{Role: store.RoleAssistant, ContentAR: "أهلا", ContentEN: "hi", CreatedAt: at},
		)
	}))
	require.NoError(t, s.Transaction(ctx, func(tx *store.Store) error {
		return tx.AppendMessages(ctx, chat.ID,
			&store.Message{Role: store.RoleUser, ContentAR: "كيف حالك", ContentEN: "how are you", CreatedAt: at.Add(time.Minute)},
		)
	}))

	msgs, err := s.Messages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{msgs[0].Seq, msgs[1].Seq, msgs[2].Seq})
	assert.Equal(t, store.RoleUser, msgs[0].Role)
	assert.Equal(t, store.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "how are you", msgs[2].ContentEN)

	count, err := s.CountMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user := storetest.SeedUser(t, s, "rollback")

	boom := errors.New("boom")
	var chatID string
	err := s.Transaction(ctx, func(tx *store.Store) error {
		chat, err := tx.CreateChat(ctx, user.ID)
		if err != nil {
			return err
		}
		chatID = chat.ID
		if err := tx.AppendMessages(ctx, chat.ID, &store.Message{Role: store.RoleUser, ContentAR: "x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.ChatForUser(ctx, chatID, user.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	count, err := s.CountMessages(ctx, chatID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpsertSummaryKeepsOneRowPerChat(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user := storetest.SeedUser(t, s, "summary")
	chat, err := s.CreateChat(ctx, user.ID)
	require.NoError(t, err)

	first := &store.ChatSummary{ChatID: chat.ID, Title: "أول", Summary: "ملخص", DominantEmotion: "حزن"}
	require.NoError(t, s.UpsertSummary(ctx, first))
	firstID := first.ID

	second := &store.ChatSummary{ChatID: chat.ID, Title: "ثاني", Summary: "ملخص جديد", DominantEmotion: "فرح"}
	require.NoError(t, s.UpsertSummary(ctx, second))
	assert.Equal(t, firstID, second.ID)
	assert.Equal(t, "ثاني", second.Title)
	assert.Equal(t, "فرح", second.DominantEmotion)

	stored, err := s.SummaryForChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "ملخص جديد", stored.Summary)
}

func TestListChatsIncludesSummaries(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user := storetest.SeedUser(t, s, "lister")
	other := storetest.SeedUser(t, s, "other")

	older, err := s.CreateChat(ctx, user.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newer, err := s.CreateChat(ctx, user.ID)
	require.NoError(t, err)
	_, err = s.CreateChat(ctx, other.ID)
	require.NoError(t, err)

	require.NoError(t, s.UpsertSummary(ctx, &store.ChatSummary{
		ChatID: newer.ID, Title: "t", Summary: "s", DominantEmotion: "عادي",
	}))

	chats, err := s.ListChats(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, older.ID, chats[0].ID)
	assert.Nil(t, chats[0].Summary)
	assert.Equal(t, newer.ID, chats[1].ID)
	require.NotNil(t, chats[1].Summary)
	assert.Equal(t, "t", chats[1].Summary.Title)
}

func TestDeleteChatCascades(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	user := storetest.SeedUser(t, s, "deleter")
	stranger := storetest.SeedUser(t, s, "intruder")
	chat, err := s.CreateChat(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, s.Transaction(ctx, func(tx *store.Store) error {
		return tx.AppendMessages(ctx, chat.ID, &store.Message{Role: store.RoleUser, ContentAR: "a", ContentEN: "a"})
	}))
	require.NoError(t, s.UpsertSummary(ctx, &store.ChatSummary{
		ChatID: chat.ID, Title: "t", Summary: "s", DominantEmotion: "عادي",
	}))

	assert.ErrorIs(t, s.DeleteChat(ctx, chat.ID, stranger.ID), store.ErrNotFound)
	require.NoError(t, s.DeleteChat(ctx, chat.ID, user.ID))

	count, err := s.CountMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = s.SummaryForChat(ctx, chat.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteChat(ctx, chat.ID, user.ID), store.ErrNotFound)
}
