package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"go.uber.org/zap"
)

// MessagingService переписка с клиентами
type MessagingService struct {
	base
}

// NewMessagingService создает новый MessagingService
func NewMessagingService(deps Deps) *MessagingService {
	return &MessagingService{base: newBase(deps)}
}

// CreateConversation открывает переписку с участниками
func (s *MessagingService) CreateConversation(ctx context.Context, subject string, participants []string) (*domain.Conversation, error) {
	const op = "messaging.create_conversation"

	if err := required(subject); err != nil {
		return nil, s.fail(op, err)
	}

	unique := make([]string, 0, len(participants))
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}

	conversation := domain.Conversation{
		Subject:      subject,
		Participants: unique,
		CreatedAt:    now(),
	}
	fields, err := docstore.Encode(conversation)
	if err != nil {
		return nil, s.fail(op, err)
	}
	conversation.ID, err = s.store.Insert(ctx, domain.CollectionConversations, fields, "")
	if err != nil {
		return nil, s.fail(op, err)
	}

	return &conversation, nil
}

// SendMessage добавляет сообщение в переписку.
// Счетчик непрочитанных растет через Increment, отправитель добавляется в участники через ArrayUnion.
func (s *MessagingService) SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	const op = "messaging.send"
	fields := []zap.Field{zap.String("conversation_id", conversationID), zap.String("sender_id", senderID)}

	if err := required(senderID, text); err != nil {
		return nil, s.fail(op, err, fields...)
	}

	message := domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      now(),
	}

	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		found, err := exists(ctx, tx, domain.CollectionConversations, conversationID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q", domain.ErrConversationNotFound, conversationID)
		}

		data, err := docstore.Encode(message)
		if err != nil {
			return err
		}
		message.ID, err = tx.Insert(ctx, domain.CollectionMessages, data, "")
		if err != nil {
			return err
		}

		return tx.Update(ctx, domain.CollectionConversations, conversationID, docstore.Fields{
			"unreadCount":   docstore.Increment(1),
			"participants":  docstore.ArrayUnion(senderID),
			"lastMessage":   text,
			"lastMessageAt": message.CreatedAt,
		})
	})
	if err != nil {
		return nil, s.fail(op, err, fields...)
	}

	return &message, nil
}

// GetConversations возвращает переписки; с participantID только те, где он участник
func (s *MessagingService) GetConversations(ctx context.Context, participantID string) ([]domain.Conversation, error) {
	var conds []docstore.Condition
	if participantID != "" {
		conds = append(conds, docstore.Where("participants", docstore.OpArrayContains, participantID))
	}

	conversations, err := list[domain.Conversation](ctx, s.store, domain.CollectionConversations, conds...)
	if err != nil {
		return nil, s.fail("messaging.list_conversations", err, zap.String("participant_id", participantID))
	}
	return conversations, nil
}

// GetMessages возвращает сообщения переписки по времени отправки
func (s *MessagingService) GetMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	messages, err := list[domain.Message](ctx, s.store, domain.CollectionMessages,
		docstore.Where("conversationId", docstore.OpEqual, conversationID))
	if err != nil {
		return nil, s.fail("messaging.list_messages", err, zap.String("conversation_id", conversationID))
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// MarkConversationRead обнуляет счетчик непрочитанных
func (s *MessagingService) MarkConversationRead(ctx context.Context, conversationID string) error {
	const op = "messaging.mark_read"

	found, err := exists(ctx, s.store, domain.CollectionConversations, conversationID)
	if err != nil {
		return s.fail(op, err, zap.String("conversation_id", conversationID))
	}
	if !found {
		return s.fail(op, fmt.Errorf("%w: %q", domain.ErrConversationNotFound, conversationID),
			zap.String("conversation_id", conversationID))
	}

	err = s.store.Update(ctx, domain.CollectionConversations, conversationID, docstore.Fields{"unreadCount": 0})
	if err != nil {
		return s.fail(op, err, zap.String("conversation_id", conversationID))
	}
	return nil
}
