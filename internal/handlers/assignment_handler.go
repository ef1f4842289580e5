package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelink/backend/internal/models"
	"github.com/carelink/backend/internal/repository"
)

// AssignmentHandler manages the patient-clinician assignment registry that
// gates messaging
type AssignmentHandler struct {
	assignRepo *repository.AssignmentRepository
	userRepo   *repository.UserRepository
}

func NewAssignmentHandler(assignRepo *repository.AssignmentRepository, userRepo *repository.UserRepository) *AssignmentHandler {
	return &AssignmentHandler{
		assignRepo: assignRepo,
		userRepo:   userRepo,
	}
}

// CreateAssignment links a patient to a clinician, active immediately
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req models.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	patient, err := h.userRepo.GetByID(req.PatientID)
	if err != nil || patient.Role != models.RolePatient {
		ErrorResponse(c, http.StatusBadRequest, "patient_id must reference a patient")
		return
	}

	clinician, err := h.userRepo.GetByID(req.ClinicianID)
	if err != nil || clinician.Role != models.RoleClinician {
		ErrorResponse(c, http.StatusBadRequest, "clinician_id must reference a clinician")
		return
	}

	assignment := &models.Assignment{
		ID:          uuid.New(),
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.assignRepo.Create(assignment); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create assignment")
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// ListAssignments returns all assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.assignRepo.List()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list assignments")
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// ActivateAssignment re-enables messaging for the pair
func (h *AssignmentHandler) ActivateAssignment(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateAssignment blocks further messaging for the pair
func (h *AssignmentHandler) DeactivateAssignment(c *gin.Context) {
	h.setActive(c, false)
}

func (h *AssignmentHandler) setActive(c *gin.Context, active bool) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid assignment ID")
		return
	}

	if err := h.assignRepo.SetActive(assignmentID, active); err != nil {
		ErrorResponse(c, http.StatusNotFound, "Assignment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
