package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/backend/internal/middleware"
	"github.com/carelink/backend/internal/models"
	"github.com/carelink/backend/internal/repository"
)

// AdminHandler implements the privileged moderation operations. These
// bypass participant read tracking and act on the message rows directly;
// every call leaves an audit record.
type AdminHandler struct {
	msgRepo   *repository.MessageRepository
	auditRepo *repository.AuditRepository
}

func NewAdminHandler(msgRepo *repository.MessageRepository, auditRepo *repository.AuditRepository) *AdminHandler {
	return &AdminHandler{
		msgRepo:   msgRepo,
		auditRepo: auditRepo,
	}
}

// MarkMessageRead sets the moderation read flag on a message
func (h *AdminHandler) MarkMessageRead(c *gin.Context) {
	h.setReadFlag(c, true, models.AuditActionMarkRead)
}

// MarkMessageUnread clears the moderation read flag on a message
func (h *AdminHandler) MarkMessageUnread(c *gin.Context) {
	h.setReadFlag(c, false, models.AuditActionMarkUnread)
}

func (h *AdminHandler) setReadFlag(c *gin.Context, read bool, action string) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message ID")
		return
	}

	message, err := h.msgRepo.GetByID(messageID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Message not found")
		return
	}

	if err := h.msgRepo.SetReadFlag(messageID, read); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update message")
		return
	}

	h.audit(c, action, message)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteMessage permanently removes a message
func (h *AdminHandler) DeleteMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message ID")
		return
	}

	message, err := h.msgRepo.GetByID(messageID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Message not found")
		return
	}

	if err := h.msgRepo.Delete(messageID); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	h.audit(c, models.AuditActionDelete, message)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMessageAudit returns the audit trail for a message
func (h *AdminHandler) GetMessageAudit(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid message ID")
		return
	}

	logs, err := h.auditRepo.GetByMessage(messageID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get audit trail")
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit": logs})
}

func (h *AdminHandler) audit(c *gin.Context, action string, message *models.Message) {
	entry := &models.AuditLog{
		ActorID:        middleware.CurrentUserID(c),
		Action:         action,
		MessageID:      &message.ID,
		ConversationID: &message.ConversationID,
		TargetUserID:   &message.SenderID,
	}
	if err := h.auditRepo.AddLog(entry); err != nil {
		log.Printf("Warning: failed to record audit log for %s on message %s: %v", action, message.ID, err)
	}
}
