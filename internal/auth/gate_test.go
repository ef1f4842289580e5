package auth

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/models"
)

// fakeAssignments is an in-memory assignment registry
type fakeAssignments struct {
	active map[string]bool
	err    error
}

func (f *fakeAssignments) IsActivePair(patientID, clinicianID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.active[patientID.String()+":"+clinicianID.String()], nil
}

func (f *fakeAssignments) set(patientID, clinicianID uuid.UUID, active bool) {
	if f.active == nil {
		f.active = make(map[string]bool)
	}
	f.active[patientID.String()+":"+clinicianID.String()] = active
}

func TestAuthorizeSend(t *testing.T) {
	patient := uuid.New()
	clinician := uuid.New()
	stranger := uuid.New()

	assignments := &fakeAssignments{}
	assignments.set(patient, clinician, true)

	tests := []struct {
		name      string
		role      models.Role
		sender    uuid.UUID
		recipient uuid.UUID
		wantErr   error
	}{
		{name: "Patient to assigned clinician", role: models.RolePatient, sender: patient, recipient: clinician},
		{name: "Clinician to assigned patient", role: models.RoleClinician, sender: clinician, recipient: patient},
		{name: "Patient to unassigned clinician", role: models.RolePatient, sender: patient, recipient: stranger, wantErr: ErrNotAssigned},
		{name: "Clinician to unassigned patient", role: models.RoleClinician, sender: clinician, recipient: stranger, wantErr: ErrNotAssigned},
		{name: "Patient wrong direction", role: models.RolePatient, sender: clinician, recipient: patient, wantErr: ErrNotAssigned},
		{name: "Admin bypasses check", role: models.RoleAdmin, sender: stranger, recipient: patient},
		{name: "Caregiver bypasses check", role: models.RoleCaregiver, sender: stranger, recipient: patient},
		{name: "Self message rejected", role: models.RoleAdmin, sender: patient, recipient: patient, wantErr: ErrSelfMessage},
		{name: "Unknown role denied", role: models.Role("NURSE"), sender: stranger, recipient: patient, wantErr: ErrNotAssigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeSend(tt.role, tt.sender, tt.recipient, assignments)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AuthorizeSend() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestAuthorizeSend_AssignmentLifecycle walks the activate/deactivate cycle:
// blocked before assignment, allowed while active, blocked again after
// deactivation.
func TestAuthorizeSend_AssignmentLifecycle(t *testing.T) {
	patient := uuid.New()
	clinician := uuid.New()
	assignments := &fakeAssignments{}

	if err := AuthorizeSend(models.RolePatient, patient, clinician, assignments); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned before assignment, got %v", err)
	}

	assignments.set(patient, clinician, true)
	if err := AuthorizeSend(models.RolePatient, patient, clinician, assignments); err != nil {
		t.Fatalf("expected send allowed while assignment active, got %v", err)
	}

	assignments.set(patient, clinician, false)
	if err := AuthorizeSend(models.RolePatient, patient, clinician, assignments); !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned after deactivation, got %v", err)
	}
}

func TestAuthorizeSend_RegistryError(t *testing.T) {
	registryErr := errors.New("registry unavailable")
	assignments := &fakeAssignments{err: registryErr}

	err := AuthorizeSend(models.RolePatient, uuid.New(), uuid.New(), assignments)
	if !errors.Is(err, registryErr) {
		t.Errorf("expected registry error to propagate, got %v", err)
	}
}
