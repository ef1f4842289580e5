package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/database"
	"github.com/carelink/backend/internal/models"
)

type ConversationRepository struct {
	db *database.DB
}

func NewConversationRepository(db *database.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByID retrieves a conversation by ID
func (r *ConversationRepository) GetByID(id uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT id, pair_key, subject, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	conversation := &models.Conversation{}
	err := r.db.QueryRow(query, id).Scan(
		&conversation.ID,
		&conversation.PairKey,
		&conversation.Subject,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conversation, nil
}

// GetOrCreateDirectConversation resolves the unique two-party conversation
// for a pair of users, creating it with both participant rows on first
// contact. The pair-key unique constraint plus insert-on-conflict makes
// concurrent first sends converge on one conversation instead of racing a
// read-then-create.
func (r *ConversationRepository) GetOrCreateDirectConversation(userA, userB uuid.UUID, subject *string) (*models.Conversation, error) {
	pairKey := models.PairKey(userA, userB)

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO conversations (id, pair_key, subject, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 ON CONFLICT (pair_key) DO NOTHING`,
		uuid.New(), pairKey, subject,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	var conversationID uuid.UUID
	err = tx.QueryRow(`SELECT id FROM conversations WHERE pair_key = $1`, pairKey).Scan(&conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}

	for _, userID := range []uuid.UUID{userA, userB} {
		_, err = tx.Exec(
			`INSERT INTO conversation_participants (id, conversation_id, user_id, unread_count, last_read_at, joined_at)
			 VALUES ($1, $2, $3, 0, NULL, NOW())
			 ON CONFLICT (conversation_id, user_id) DO NOTHING`,
			uuid.New(), conversationID, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetByID(conversationID)
}

// IsParticipant checks if a user is a participant of a conversation
func (r *ConversationRepository) IsParticipant(conversationID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2
		)
	`

	var exists bool
	err := r.db.QueryRow(query, conversationID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}

	return exists, nil
}

// GetParticipants retrieves all participants of a conversation with their
// user records
func (r *ConversationRepository) GetParticipants(conversationID uuid.UUID) ([]models.Participant, error) {
	query := `
		SELECT cp.id, cp.conversation_id, cp.user_id, cp.unread_count, cp.last_read_at, cp.joined_at,
		       u.id, u.email, u.display_name, u.role, u.avatar_url, u.created_at, u.updated_at
		FROM conversation_participants cp
		INNER JOIN users u ON cp.user_id = u.id
		WHERE cp.conversation_id = $1
	`

	rows, err := r.db.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		var user models.User

		err := rows.Scan(
			&p.ID,
			&p.ConversationID,
			&p.UserID,
			&p.UnreadCount,
			&p.LastReadAt,
			&p.JoinedAt,
			&user.ID,
			&user.Email,
			&user.DisplayName,
			&user.Role,
			&user.AvatarURL,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}

		p.User = &user
		participants = append(participants, p)
	}

	return participants, nil
}

// MarkRead advances the caller's read watermark to now and clears the
// unread counter in the same statement. Calling it again is a no-op apart
// from moving the watermark forward.
func (r *ConversationRepository) MarkRead(conversationID, userID uuid.UUID) error {
	query := `
		UPDATE conversation_participants
		SET last_read_at = NOW(), unread_count = 0
		WHERE conversation_id = $1 AND user_id = $2
	`

	result, err := r.db.Exec(query, conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("participant not found")
	}

	return nil
}

// GetUnreadSummary aggregates the user's unread counters per conversation
// for the poll endpoint. Read-only.
func (r *ConversationRepository) GetUnreadSummary(userID uuid.UUID) (*models.UnreadSummary, error) {
	query := `
		SELECT c.id, COALESCE(c.subject, 'No subject'), cp.unread_count, u.display_name, m.created_at
		FROM conversation_participants cp
		INNER JOIN conversations c ON c.id = cp.conversation_id
		INNER JOIN LATERAL (
			SELECT sender_id, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON true
		INNER JOIN users u ON u.id = m.sender_id
		WHERE cp.user_id = $1 AND cp.unread_count > 0
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread summary: %w", err)
	}
	defer rows.Close()

	summary := &models.UnreadSummary{Notifications: []models.ConversationSummary{}}
	for rows.Next() {
		var s models.ConversationSummary
		err := rows.Scan(
			&s.ConversationID,
			&s.Subject,
			&s.UnreadCount,
			&s.LastSenderName,
			&s.LastMessageTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary.Notifications = append(summary.Notifications, s)
		summary.TotalUnread += s.UnreadCount
	}

	return summary, nil
}
