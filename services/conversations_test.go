package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vampyr-backend/models"
)

func TestCreateConversationDefaultsTitle(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)

	conv, err := svc.Create("u1", "   ")
	require.NoError(t, err)
	assert.Equal(t, "New conversation", conv.Title)
	assert.NotEmpty(t, conv.ID)

	conv, err = svc.Create("u1", "Boss strategies")
	require.NoError(t, err)
	assert.Equal(t, "Boss strategies", conv.Title)
}

func TestListConversationsIsScopedToUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)

	mine, err := svc.Create("u1", "Mine")
	require.NoError(t, err)
	_, err = svc.Create("u2", "Theirs")
	require.NoError(t, err)

	_, err = svc.AddMessage("u1", mine.ID, models.RoleUser, "hello")
	require.NoError(t, err)
	_, err = svc.AddMessage("u1", mine.ID, models.RoleAssistant, "hi there")
	require.NoError(t, err)

	list, err := svc.List("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
	assert.EqualValues(t, 2, list[0].MessageCount)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "hi there", list[0].LastMessage.Content)
}

func TestGetConversationWithMessages(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)

	conv, err := svc.Create("u1", "Mine")
	require.NoError(t, err)
	_, err = svc.AddMessage("u1", conv.ID, models.RoleUser, "first")
	require.NoError(t, err)
	_, err = svc.AddMessage("u1", conv.ID, models.RoleAssistant, "second")
	require.NoError(t, err)

	got, err := svc.Get("u1", conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "first", got.Messages[0].Content)
	assert.Equal(t, "second", got.Messages[1].Content)

	_, err = svc.Get("u2", conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestRenameConversation(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)

	conv, err := svc.Create("u1", "Old")
	require.NoError(t, err)

	renamed, err := svc.Rename("u1", conv.ID, "New title")
	require.NoError(t, err)
	assert.Equal(t, "New title", renamed.Title)

	_, err = svc.Rename("u1", conv.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = svc.Rename("u2", conv.ID, "Hijack")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)

	conv, err := svc.Create("u1", "Doomed")
	require.NoError(t, err)
	_, err = svc.AddMessage("u1", conv.ID, models.RoleUser, "bye")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete("u2", conv.ID), ErrConversationNotFound)
	require.NoError(t, svc.Delete("u1", conv.ID))

	var count int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("conversation_id = ?", conv.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddMessageValidatesRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)

	conv, err := svc.Create("u1", "Mine")
	require.NoError(t, err)

	_, err = svc.AddMessage("u1", conv.ID, "system", "nope")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.AddMessage("u1", "missing", models.RoleUser, "nope")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
