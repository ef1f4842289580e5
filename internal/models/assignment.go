package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment links a patient to a clinician. Messaging between the two is
// only permitted while IsActive is true.
type Assignment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PatientID   uuid.UUID `json:"patient_id" db:"patient_id"`
	ClinicianID uuid.UUID `json:"clinician_id" db:"clinician_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CreateAssignmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	ClinicianID uuid.UUID `json:"clinician_id" binding:"required"`
}
