package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/logger"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageHandler struct {
	messageService service.MessageService
	log            *logger.Logger
}

func NewMessageHandler(messageService service.MessageService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, log: log}
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content"`
}

type MessageResponse struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"senderId"`
	ReceiverID string     `json:"receiverId"`
	Content    string     `json:"content"`
	Read       bool       `json:"read"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	SentAt     time.Time  `json:"sentAt"`
}

type ConversationResponse struct {
	CounterpartID string          `json:"counterpartId"`
	Counterpart   *UserResponse   `json:"counterpart,omitempty"`
	LastMessage   MessageResponse `json:"lastMessage"`
	UnreadCount   int             `json:"unreadCount"`
}

func MapMessageToResponse(m *domain.Message) MessageResponse {
	if m == nil {
		return MessageResponse{}
	}
	return MessageResponse{
		ID:         m.ID.Hex(),
		SenderID:   m.SenderID.Hex(),
		ReceiverID: m.ReceiverID.Hex(),
		Content:    m.Content,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
		SentAt:     m.SentAt,
	}
}

func MapMessagesToResponse(messages []domain.Message) []MessageResponse {
	responses := make([]MessageResponse, len(messages))
	for i := range messages {
		responses[i] = MapMessageToResponse(&messages[i])
	}
	return responses
}

func MapConversationsToResponse(conversations []domain.Conversation) []ConversationResponse {
	responses := make([]ConversationResponse, len(conversations))
	for i, conv := range conversations {
		resp := ConversationResponse{
			CounterpartID: conv.CounterpartID.Hex(),
			LastMessage:   MapMessageToResponse(&conv.LastMessage),
			UnreadCount:   conv.UnreadCount,
		}
		if conv.Counterpart != nil {
			user := MapUserToResponse(conv.Counterpart)
			resp.Counterpart = &user
		}
		responses[i] = resp
	}
	return responses
}

// SendMessage godoc
// @Summary Send a direct message
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body SendMessageRequest true "Message"
// @Success 201 {object} MessageResponse
// @Failure 404 {object} gin.H "Receiver not found"
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid receiverId format.")
		return
	}
	senderID, ok := currentUser(c)
	if !ok {
		return
	}

	message, err := h.messageService.SendMessage(c.Request.Context(), senderID, receiverID, req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapMessageToResponse(message))
}

// ListConversations godoc
// @Summary List conversations, most recent first
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ConversationResponse
// @Router /conversations [get]
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversations, err := h.messageService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapConversationsToResponse(conversations))
}

// GetThread godoc
// @Summary Messages exchanged with one user, oldest first
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Counterpart user ID"
// @Param limit query int false "Latest N messages"
// @Success 200 {array} MessageResponse
// @Router /conversations/{userId} [get]
func (h *MessageHandler) GetThread(c *gin.Context) {
	counterpartID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	messages, err := h.messageService.GetThread(c.Request.Context(), userID, counterpartID, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapMessagesToResponse(messages))
}

// MarkThreadRead godoc
// @Summary Mark every message from a user as read
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Counterpart user ID"
// @Success 200 {object} gin.H "updated count"
// @Router /conversations/{userId}/read [post]
func (h *MessageHandler) MarkThreadRead(c *gin.Context) {
	counterpartID, ok := pathObjectID(c, "userId")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := h.messageService.MarkThreadRead(c.Request.Context(), userID, counterpartID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// MarkRead godoc
// @Summary Mark one received message as read
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} gin.H "Not the receiver"
// @Router /messages/{messageId}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	messageID, ok := pathObjectID(c, "messageId")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	message, err := h.messageService.MarkRead(c.Request.Context(), userID, messageID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapMessageToResponse(message))
}

// UnreadCount godoc
// @Summary Number of unread messages addressed to the caller
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "unread count"
// @Router /messages/unread [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	count, err := h.messageService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// DeleteMessage godoc
// @Summary Delete a message the caller sent
// @Tags Messages
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Success 204
// @Router /messages/{messageId} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := pathObjectID(c, "messageId")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.messageService.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
