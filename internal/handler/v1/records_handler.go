package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
)

type createPatientRequest struct {
	UserID           int64                     `json:"userId"`
	DateOfBirth      *Timestamp                `json:"dateOfBirth"`
	Gender           patient.Gender            `json:"gender"`
	Address          string                    `json:"address"`
	BloodGroup       patient.BloodGroup        `json:"bloodGroup"`
	EmergencyContact *patient.EmergencyContact `json:"emergencyContact"`
	Allergies        []string                  `json:"allergies"`
}

type updatePatientRequest struct {
	DateOfBirth      *Timestamp                `json:"dateOfBirth"`
	Gender           *patient.Gender           `json:"gender"`
	Address          *string                   `json:"address"`
	BloodGroup       *patient.BloodGroup       `json:"bloodGroup"`
	EmergencyContact *patient.EmergencyContact `json:"emergencyContact"`
	Allergies        *[]string                 `json:"allergies"`
}

type createPrescriptionRequest struct {
	AppointmentID int64                     `json:"appointmentId"`
	Medications   []prescription.Medication `json:"medications"`
	Instructions  string                    `json:"instructions"`
}

type updatePrescriptionRequest struct {
	Status prescription.Status `json:"status" binding:"required"`
}

func (h *Handler) listPatients(c *gin.Context) {
	views, err := h.svc.Patients.List(c.Request.Context(), principal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) myPatientRecord(c *gin.Context) {
	view, err := h.svc.Patients.Me(c.Request.Context(), principal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *Handler) getPatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Patients.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *Handler) createPatient(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.Patients.Create(c.Request.Context(), principal(c), &patient.CreatePatientCommand{
		UserID:           req.UserID,
		DateOfBirth:      timePtr(req.DateOfBirth),
		Gender:           req.Gender,
		Address:          req.Address,
		BloodGroup:       req.BloodGroup,
		EmergencyContact: req.EmergencyContact,
		Allergies:        req.Allergies,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, view)
}

func (h *Handler) updatePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}
	pt, err := h.svc.Patients.Update(c.Request.Context(), principal(c), id, &patient.Patch{
		DateOfBirth:      timePtr(req.DateOfBirth),
		Gender:           req.Gender,
		Address:          req.Address,
		BloodGroup:       req.BloodGroup,
		EmergencyContact: req.EmergencyContact,
		Allergies:        req.Allergies,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pt)
}

// listPrescriptions accepts ?patientId, ?doctorId, ?appointmentId and
// ?status filters. Patients are always limited to their own.
func (h *Handler) listPrescriptions(c *gin.Context) {
	q := &prescription.ListQuery{}
	var ok bool
	if q.PatientID, ok = queryID(c, "patientId"); !ok {
		return
	}
	if q.DoctorID, ok = queryID(c, "doctorId"); !ok {
		return
	}
	if q.AppointmentID, ok = queryID(c, "appointmentId"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		st := prescription.Status(raw)
		q.Status = &st
	}

	views, err := h.svc.Prescriptions.List(c.Request.Context(), principal(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) pendingPrescriptions(c *gin.Context) {
	views, err := h.svc.Prescriptions.Pending(c.Request.Context(), principal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) createPrescription(c *gin.Context) {
	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.Prescriptions.Create(c.Request.Context(), principal(c), &prescription.CreatePrescriptionCommand{
		AppointmentID: req.AppointmentID,
		Medications:   req.Medications,
		Instructions:  req.Instructions,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, view)
}

func (h *Handler) dispensePrescription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.dispense(c, id)
}

// updatePrescription only knows one status change: dispensing.
func (h *Handler) updatePrescription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updatePrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Status != prescription.StatusDispensed {
		respondError(c, http.StatusBadRequest, "status can only be set to dispensed")
		return
	}
	h.dispense(c, id)
}

func (h *Handler) dispense(c *gin.Context, id int64) {
	pr, err := h.svc.Prescriptions.Dispense(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, pr)
}
