package service

import (
	"context"
	"testing"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagingService_Conversation(t *testing.T) {
	for _, mode := range []docstore.Mode{docstore.ModeAtomic, docstore.ModeCompat} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			deps := newTestDeps(t, mode)
			messaging := NewMessagingService(deps)

			conversation, err := messaging.CreateConversation(ctx, "Delivery", []string{"admin", "u1", "admin", ""})
			require.NoError(t, err)
			assert.Equal(t, []string{"admin", "u1"}, conversation.Participants)

			_, err = messaging.SendMessage(ctx, conversation.ID, "u1", "where is my parcel?")
			require.NoError(t, err)
			_, err = messaging.SendMessage(ctx, conversation.ID, "u2", "same question")
			require.NoError(t, err)

			stored := testutil.Fetch(t, deps.Store, domain.CollectionConversations, conversation.ID)
			assert.Equal(t, 2.0, stored.Float("unreadCount"))
			assert.Equal(t, "same question", stored.String("lastMessage"))
			assert.Equal(t, []any{"admin", "u1", "u2"}, stored.Get("participants"))

			forU2, err := messaging.GetConversations(ctx, "u2")
			require.NoError(t, err)
			assert.Len(t, forU2, 1)
			none, err := messaging.GetConversations(ctx, "u3")
			require.NoError(t, err)
			assert.Empty(t, none)

			messages, err := messaging.GetMessages(ctx, conversation.ID)
			require.NoError(t, err)
			require.Len(t, messages, 2)
			assert.Equal(t, "where is my parcel?", messages[0].Text)

			require.NoError(t, messaging.MarkConversationRead(ctx, conversation.ID))
			stored = testutil.Fetch(t, deps.Store, domain.CollectionConversations, conversation.ID)
			assert.Equal(t, 0.0, stored.Float("unreadCount"))
		})
	}
}

func TestMessagingService_Errors(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	messaging := NewMessagingService(deps)

	_, err := messaging.CreateConversation(ctx, "", nil)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = messaging.SendMessage(ctx, "ghost", "u1", "hello")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	assert.Zero(t, count(t, deps, domain.CollectionMessages))

	conversation, err := messaging.CreateConversation(ctx, "Support", []string{"admin"})
	require.NoError(t, err)
	_, err = messaging.SendMessage(ctx, conversation.ID, "u1", "")
	assert.Equal(t, KindValidation, KindOf(err))

	assert.Equal(t, KindNotFound, KindOf(messaging.MarkConversationRead(ctx, "ghost")))
}
