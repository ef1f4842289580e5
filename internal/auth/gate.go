package auth

import (
	"errors"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/models"
)

var (
	// ErrSelfMessage is returned when sender and recipient are the same user
	ErrSelfMessage = errors.New("cannot message yourself")
	// ErrNotAssigned is returned when no active assignment links the pair
	ErrNotAssigned = errors.New("you can only message assigned counterparts")
)

// AssignmentChecker answers whether a patient is actively assigned to a
// clinician. Implemented by repository.AssignmentRepository.
type AssignmentChecker interface {
	IsActivePair(patientID, clinicianID uuid.UUID) (bool, error)
}

// AuthorizeSend enforces the send gate: patients and clinicians may only
// message their assigned counterparts, other roles are unrestricted.
func AuthorizeSend(role models.Role, senderID, recipientID uuid.UUID, assignments AssignmentChecker) error {
	if senderID == recipientID {
		return ErrSelfMessage
	}

	switch role {
	case models.RolePatient:
		active, err := assignments.IsActivePair(senderID, recipientID)
		if err != nil {
			return err
		}
		if !active {
			return ErrNotAssigned
		}
		return nil
	case models.RoleClinician:
		active, err := assignments.IsActivePair(recipientID, senderID)
		if err != nil {
			return err
		}
		if !active {
			return ErrNotAssigned
		}
		return nil
	case models.RoleAdmin, models.RoleCaregiver:
		return nil
	default:
		return ErrNotAssigned
	}
}
