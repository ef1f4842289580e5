package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/database"
	"github.com/carelink/backend/internal/models"
)

type AssignmentRepository struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create creates an assignment, reactivating it if the pair already exists
func (r *AssignmentRepository) Create(assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (id, patient_id, clinician_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (patient_id, clinician_id)
		DO UPDATE SET is_active = EXCLUDED.is_active, updated_at = NOW()
		RETURNING id, is_active, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		assignment.ID,
		assignment.PatientID,
		assignment.ClinicianID,
		assignment.IsActive,
	).Scan(&assignment.ID, &assignment.IsActive, &assignment.CreatedAt, &assignment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	return nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(id uuid.UUID) (*models.Assignment, error) {
	query := `
		SELECT id, patient_id, clinician_id, is_active, created_at, updated_at
		FROM assignments
		WHERE id = $1
	`

	assignment := &models.Assignment{}
	err := r.db.QueryRow(query, id).Scan(
		&assignment.ID,
		&assignment.PatientID,
		&assignment.ClinicianID,
		&assignment.IsActive,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assignment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return assignment, nil
}

// List retrieves all assignments
func (r *AssignmentRepository) List() ([]models.Assignment, error) {
	query := `
		SELECT id, patient_id, clinician_id, is_active, created_at, updated_at
		FROM assignments
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		err := rows.Scan(
			&a.ID,
			&a.PatientID,
			&a.ClinicianID,
			&a.IsActive,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

// SetActive activates or deactivates an assignment
func (r *AssignmentRepository) SetActive(id uuid.UUID, active bool) error {
	query := `
		UPDATE assignments
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("assignment not found")
	}

	return nil
}

// IsActivePair reports whether the patient is actively assigned to the
// clinician. Implements auth.AssignmentChecker.
func (r *AssignmentRepository) IsActivePair(patientID, clinicianID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM assignments
			WHERE patient_id = $1 AND clinician_id = $2 AND is_active = true
		)
	`

	var exists bool
	err := r.db.QueryRow(query, patientID, clinicianID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}

	return exists, nil
}
