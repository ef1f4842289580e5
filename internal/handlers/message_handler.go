package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/backend/internal/auth"
	"github.com/carelink/backend/internal/cache"
	"github.com/carelink/backend/internal/middleware"
	"github.com/carelink/backend/internal/models"
	"github.com/carelink/backend/internal/repository"
)

type MessageHandler struct {
	msgRepo     *repository.MessageRepository
	convRepo    *repository.ConversationRepository
	userRepo    *repository.UserRepository
	assignments auth.AssignmentChecker
	redis       *cache.RedisClient
}

func NewMessageHandler(
	msgRepo *repository.MessageRepository,
	convRepo *repository.ConversationRepository,
	userRepo *repository.UserRepository,
	assignments auth.AssignmentChecker,
	redis *cache.RedisClient,
) *MessageHandler {
	return &MessageHandler{
		msgRepo:     msgRepo,
		convRepo:    convRepo,
		userRepo:    userRepo,
		assignments: assignments,
		redis:       redis,
	}
}

// SendMessage starts or continues a conversation with a recipient
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	uid := middleware.CurrentUserID(c)
	role := middleware.CurrentRole(c)

	if err := auth.AuthorizeSend(role, uid, req.RecipientID, h.assignments); err != nil {
		if errors.Is(err, auth.ErrSelfMessage) {
			ErrorResponse(c, http.StatusBadRequest, "Cannot send a message to yourself")
			return
		}
		if errors.Is(err, auth.ErrNotAssigned) {
			ErrorResponse(c, http.StatusForbidden, "Access denied")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	// Recipient lookup failures get the same generic denial as a failed
	// assignment check so the endpoint never confirms whether a user exists
	if _, err := h.userRepo.GetByID(req.RecipientID); err != nil {
		ErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var subject *string
	if req.Subject != "" {
		subject = &req.Subject
	}

	conversation, err := h.convRepo.GetOrCreateDirectConversation(uid, req.RecipientID, subject)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	message, err := h.appendMessage(conversation, uid, req.Subject, req.Body)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message})
}

// Reply appends a message to an existing conversation
func (h *MessageHandler) Reply(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	var req models.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	uid := middleware.CurrentUserID(c)

	conversation, err := h.convRepo.GetByID(conversationID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Conversation not found")
		return
	}

	isParticipant, err := h.convRepo.IsParticipant(conversationID, uid)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}
	if !isParticipant {
		ErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	subject := ""
	if conversation.Subject != nil {
		subject = *conversation.Subject
	}

	message, err := h.appendMessage(conversation, uid, subject, req.Body)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message})
}

// appendMessage writes the envelope-encoded message and refreshes the other
// participants' cached unread state
func (h *MessageHandler) appendMessage(conversation *models.Conversation, senderID uuid.UUID, subject, body string) (*models.Message, error) {
	content := models.EncodeEnvelope(subject, body)

	message, err := h.msgRepo.Send(conversation.ID, senderID, content)
	if err != nil {
		return nil, err
	}

	h.notifyReadStateChanged(conversation.ID, senderID)
	return message, nil
}

// notifyReadStateChanged invalidates cached summaries and publishes a
// read-state event for every participant except the actor. Cache layer
// failures are not surfaced; the database already holds the truth.
func (h *MessageHandler) notifyReadStateChanged(conversationID, actorID uuid.UUID) {
	if h.redis == nil {
		return
	}

	participants, err := h.convRepo.GetParticipants(conversationID)
	if err != nil {
		return
	}

	for _, p := range participants {
		if p.UserID == actorID {
			continue
		}
		_ = h.redis.InvalidateUnreadSummary(p.UserID)
		_ = h.redis.PublishReadStateChanged(cache.ReadStateEvent{
			UserID:         p.UserID,
			ConversationID: conversationID,
			ChangedAt:      time.Now(),
		})
	}
}

// GetInbox returns received messages, newest-first, one row per message
func (h *MessageHandler) GetInbox(c *gin.Context) {
	uid := middleware.CurrentUserID(c)

	rows, err := h.msgRepo.GetInbox(uid)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get inbox")
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": rows})
}

// GetSent returns authored messages, newest-first
func (h *MessageHandler) GetSent(c *gin.Context) {
	uid := middleware.CurrentUserID(c)

	rows, err := h.msgRepo.GetSent(uid)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get sent messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": rows})
}

// GetConversation returns a conversation with its full thread
func (h *MessageHandler) GetConversation(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	uid := middleware.CurrentUserID(c)

	conversation, err := h.convRepo.GetByID(conversationID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Conversation not found")
		return
	}

	isParticipant, err := h.convRepo.IsParticipant(conversationID, uid)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get conversation")
		return
	}
	if !isParticipant {
		ErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	participants, err := h.convRepo.GetParticipants(conversationID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get conversation")
		return
	}
	// Read state is private to each participant; only the viewer's row
	// keeps it
	for i := range participants {
		if participants[i].UserID != uid {
			participants[i].UnreadCount = 0
			participants[i].LastReadAt = nil
		}
	}
	conversation.Participants = participants

	messages, err := h.msgRepo.GetThread(conversationID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get conversation")
		return
	}
	conversation.Messages = messages

	c.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

// MarkRead advances the caller's read watermark for a conversation. The
// message id list is accepted for audit purposes only; read state is
// tracked per conversation, not per message.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req models.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	uid := middleware.CurrentUserID(c)

	if _, err := h.convRepo.GetByID(req.ConversationID); err != nil {
		ErrorResponse(c, http.StatusNotFound, "Conversation not found")
		return
	}

	isParticipant, err := h.convRepo.IsParticipant(req.ConversationID, uid)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to mark messages read")
		return
	}
	if !isParticipant {
		ErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.convRepo.MarkRead(req.ConversationID, uid); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to mark messages read")
		return
	}

	if h.redis != nil {
		_ = h.redis.InvalidateUnreadSummary(uid)
		_ = h.redis.PublishReadStateChanged(cache.ReadStateEvent{
			UserID:         uid,
			ConversationID: req.ConversationID,
			ChangedAt:      time.Now(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetNotifications returns the caller's unread summary for polling clients.
// Read-only; served from the cache when warm.
func (h *MessageHandler) GetNotifications(c *gin.Context) {
	uid := middleware.CurrentUserID(c)

	if h.redis != nil {
		if cached, err := h.redis.GetUnreadSummary(uid); err == nil && cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	summary, err := h.convRepo.GetUnreadSummary(uid)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	if h.redis != nil {
		_ = h.redis.SetUnreadSummary(uid, summary)
	}

	c.JSON(http.StatusOK, summary)
}
