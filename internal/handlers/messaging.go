package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MessagingService определяет методы переписки.
type MessagingService interface {
	CreateConversation(ctx context.Context, subject string, participants []string) (*domain.Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error)
	GetConversations(ctx context.Context, participantID string) ([]domain.Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
	MarkConversationRead(ctx context.Context, conversationID string) error
}

type MessagingHandler struct {
	responder
	messagingService MessagingService
}

func NewMessagingHandler(messagingService MessagingService, logger *zap.Logger) *MessagingHandler {
	return &MessagingHandler{
		responder:        responder{logger: logger},
		messagingService: messagingService,
	}
}

type conversationRequest struct {
	Subject      string   `json:"subject"`
	Participants []string `json:"participants"`
}

type messageRequest struct {
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

func (h *MessagingHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if !h.decode(w, r, &req) {
		return
	}
	conv, err := h.messagingService.CreateConversation(r.Context(), req.Subject, req.Participants)
	h.result(w, r, http.StatusCreated, conv, err)
}

// GetConversations ?participantId= ограничивает беседами участника
func (h *MessagingHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.messagingService.GetConversations(r.Context(), r.URL.Query().Get("participantId"))
	h.result(w, r, http.StatusOK, convs, err)
}

func (h *MessagingHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messagingService.GetMessages(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, messages, err)
}

func (h *MessagingHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SenderID == "" {
		// сообщение от имени администратора, если отправитель не указан
		req.SenderID = string(domain.RoleAdmin)
	}
	msg, err := h.messagingService.SendMessage(r.Context(), chi.URLParam(r, "id"), req.SenderID, req.Text)
	h.result(w, r, http.StatusCreated, msg, err)
}

func (h *MessagingHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.messagingService.MarkConversationRead(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}
