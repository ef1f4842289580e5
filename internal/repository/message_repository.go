package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/database"
	"github.com/carelink/backend/internal/models"
)

type MessageRepository struct {
	db *database.DB
}

func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Send appends a message to a conversation. The insert, the conversation
// timestamp bump and the recipients' unread increments commit together or
// not at all; the increment runs server-side so concurrent sends never
// under-count.
func (r *MessageRepository) Send(conversationID, senderID uuid.UUID, content string) (*models.Message, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	messageID := uuid.New()
	err = tx.QueryRow(
		`INSERT INTO messages (id, conversation_id, sender_id, content, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id`,
		messageID, conversationID, senderID, content,
	).Scan(&messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bump conversation: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE conversation_participants
		 SET unread_count = unread_count + 1
		 WHERE conversation_id = $1 AND user_id != $2`,
		conversationID, senderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment unread counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetByID(messageID)
}

// GetByID retrieves a message with its sender identity
func (r *MessageRepository) GetByID(id uuid.UUID) (*models.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.attachment_url, m.attachment_name, m.is_read, m.created_at,
		       u.id, u.email, u.display_name, u.role, u.avatar_url, u.created_at, u.updated_at
		FROM messages m
		INNER JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1
	`

	message := &models.Message{}
	sender := &models.User{}
	err := r.db.QueryRow(query, id).Scan(
		&message.ID,
		&message.ConversationID,
		&message.SenderID,
		&message.Content,
		&message.AttachmentURL,
		&message.AttachmentName,
		&message.IsRead,
		&message.CreatedAt,
		&sender.ID,
		&sender.Email,
		&sender.DisplayName,
		&sender.Role,
		&sender.AvatarURL,
		&sender.CreatedAt,
		&sender.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("message not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	message.Sender = sender
	return message, nil
}

// GetThread retrieves a conversation's messages oldest-first with sender
// identities
func (r *MessageRepository) GetThread(conversationID uuid.UUID) ([]models.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.attachment_url, m.attachment_name, m.is_read, m.created_at,
		       u.id, u.email, u.display_name, u.role, u.avatar_url, u.created_at, u.updated_at
		FROM messages m
		INNER JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC
	`

	rows, err := r.db.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		var sender models.User

		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Content,
			&msg.AttachmentURL,
			&msg.AttachmentName,
			&msg.IsRead,
			&msg.CreatedAt,
			&sender.ID,
			&sender.Email,
			&sender.DisplayName,
			&sender.Role,
			&sender.AvatarURL,
			&sender.CreatedAt,
			&sender.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.Sender = &sender
		messages = append(messages, msg)
	}

	return messages, nil
}

// GetInbox projects every message received by the user, newest-first. One
// row per message; the unread flag is derived from the viewer's read
// watermark, never from the counter.
func (r *MessageRepository) GetInbox(userID uuid.UUID) ([]models.InboxRow, error) {
	query := `
		SELECT m.id, m.conversation_id, m.content, m.created_at,
		       u.id, u.display_name, u.email, cp.last_read_at
		FROM messages m
		INNER JOIN conversation_participants cp
			ON cp.conversation_id = m.conversation_id AND cp.user_id = $1
		INNER JOIN users u ON u.id = m.sender_id
		WHERE m.sender_id != $1
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inbox: %w", err)
	}
	defer rows.Close()

	inbox := []models.InboxRow{}
	for rows.Next() {
		var row models.InboxRow
		var content string
		var lastReadAt *time.Time

		err := rows.Scan(
			&row.MessageID,
			&row.ConversationID,
			&content,
			&row.CreatedAt,
			&row.SenderID,
			&row.SenderName,
			&row.SenderEmail,
			&lastReadAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inbox row: %w", err)
		}

		subject, body := models.ParseEnvelope(content)
		row.Subject = subject
		row.Preview = models.Preview(body)
		row.Unread = models.IsUnread(row.CreatedAt, lastReadAt)
		inbox = append(inbox, row)
	}

	return inbox, nil
}

// GetSent projects every message authored by the user, newest-first, with
// the other participant shown as recipient
func (r *MessageRepository) GetSent(userID uuid.UUID) ([]models.SentRow, error) {
	query := `
		SELECT m.id, m.conversation_id, m.content, m.created_at,
		       u.id, u.display_name, u.email
		FROM messages m
		INNER JOIN conversation_participants cp
			ON cp.conversation_id = m.conversation_id AND cp.user_id != $1
		INNER JOIN users u ON u.id = cp.user_id
		WHERE m.sender_id = $1
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sent messages: %w", err)
	}
	defer rows.Close()

	sent := []models.SentRow{}
	for rows.Next() {
		var row models.SentRow
		var content string

		err := rows.Scan(
			&row.MessageID,
			&row.ConversationID,
			&content,
			&row.CreatedAt,
			&row.RecipientID,
			&row.RecipientName,
			&row.RecipientEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sent row: %w", err)
		}

		subject, body := models.ParseEnvelope(content)
		row.Subject = subject
		row.Preview = models.Preview(body)
		sent = append(sent, row)
	}

	return sent, nil
}

// SetReadFlag toggles the admin moderation read flag on a message. This is
// independent of participant read state.
func (r *MessageRepository) SetReadFlag(id uuid.UUID, read bool) error {
	query := `UPDATE messages SET is_read = $2 WHERE id = $1`

	result, err := r.db.Exec(query, id, read)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("message not found")
	}

	return nil
}

// Delete deletes a message
func (r *MessageRepository) Delete(id uuid.UUID) error {
	query := `DELETE FROM messages WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("message not found")
	}

	return nil
}
