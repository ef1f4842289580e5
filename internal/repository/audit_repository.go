package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/database"
	"github.com/carelink/backend/internal/models"
)

type AuditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AddLog records a privileged action
func (r *AuditRepository) AddLog(log *models.AuditLog) error {
	var metadata []byte
	var err error
	if log.Metadata != nil {
		metadata, err = json.Marshal(log.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (id, actor_id, action, message_id, conversation_id, target_user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = r.db.Exec(
		query,
		uuid.New(),
		log.ActorID,
		log.Action,
		log.MessageID,
		log.ConversationID,
		log.TargetUserID,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to add audit log: %w", err)
	}

	return nil
}

// GetByMessage retrieves the audit trail for a message
func (r *AuditRepository) GetByMessage(messageID uuid.UUID) ([]models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, message_id, conversation_id, target_user_id, metadata, created_at
		FROM audit_logs
		WHERE message_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		var metadata []byte
		err := rows.Scan(
			&l.ID,
			&l.ActorID,
			&l.Action,
			&l.MessageID,
			&l.ConversationID,
			&l.TargetUserID,
			&metadata,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &l.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		logs = append(logs, l)
	}

	return logs, nil
}
