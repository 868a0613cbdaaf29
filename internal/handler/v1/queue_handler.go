package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
)

type bookAppointmentRequest struct {
	PatientID       int64     `json:"patientId"`
	DoctorID        int64     `json:"doctorId"`
	DepartmentID    int64     `json:"departmentId"`
	AppointmentDate Timestamp `json:"appointmentDate"`
	TokenNumber     string    `json:"tokenNumber"`
	Notes           string    `json:"notes"`
}

type updateAppointmentRequest struct {
	Status          *appointment.Status `json:"status"`
	Notes           *string             `json:"notes"`
	AppointmentDate *Timestamp          `json:"appointmentDate"`
}

type transitionTokenRequest struct {
	Status      token.Status `json:"status"`
	CalledAt    *Timestamp   `json:"calledAt"`
	CompletedAt *Timestamp   `json:"completedAt"`
}

type callNextRequest struct {
	DoctorID int64 `json:"doctorId"`
}

func (h *Handler) bookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.Queue.Book(c.Request.Context(), principal(c), &appointment.CreateAppointmentCommand{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		DepartmentID:    req.DepartmentID,
		AppointmentDate: req.AppointmentDate.Time,
		TokenNumber:     req.TokenNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, view)
}

func (h *Handler) listAppointments(c *gin.Context) {
	q := &appointment.ListQuery{}
	var ok bool
	if q.PatientID, ok = queryID(c, "patientId"); !ok {
		return
	}
	if q.DoctorID, ok = queryID(c, "doctorId"); !ok {
		return
	}
	if q.DepartmentID, ok = queryID(c, "departmentId"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		if !st.IsValid() {
			respondServiceError(c, appointment.ErrInvalidStatusTransition)
			return
		}
		q.Status = &st
	}
	if c.Query("date") != "" {
		day, ok := queryDay(c)
		if !ok {
			return
		}
		q.Day = &day
	}

	views, err := h.svc.Appointments.List(c.Request.Context(), principal(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) myAppointments(c *gin.Context) {
	views, err := h.svc.Appointments.Mine(c.Request.Context(), principal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) doctorAppointments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	views, err := h.svc.Appointments.ForDoctor(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) patientAppointments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	views, err := h.svc.Appointments.ForPatient(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) getAppointment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Appointments.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *Handler) updateAppointment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.svc.Appointments.Update(c.Request.Context(), principal(c), id, service.AppointmentUpdate{
		Status:          req.Status,
		Notes:           req.Notes,
		AppointmentDate: timePtr(req.AppointmentDate),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) cancelAppointment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Appointments.Cancel(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

// listTokens filters by ?departmentId, ?tokenNumber and a comma separated
// ?status list.
func (h *Handler) listTokens(c *gin.Context) {
	q := &token.ListQuery{}
	var ok bool
	if q.DepartmentID, ok = queryID(c, "departmentId"); !ok {
		return
	}
	if n := strings.TrimSpace(c.Query("tokenNumber")); n != "" {
		q.TokenNumber = &n
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := token.Status(strings.TrimSpace(s))
			if !st.IsValid() {
				respondServiceError(c, token.ErrInvalidStatus)
				return
			}
			q.Statuses = append(q.Statuses, st)
		}
	}
	h.respondTokens(c, q)
}

func (h *Handler) departmentTokens(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.respondTokens(c, &token.ListQuery{DepartmentID: &id})
}

func (h *Handler) respondTokens(c *gin.Context, q *token.ListQuery) {
	views, err := h.svc.Queue.Tokens(c.Request.Context(), principal(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) transitionToken(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transitionTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Queue.Transition(c.Request.Context(), principal(c), id, service.TokenTransition{
		Status:      req.Status,
		CalledAt:    timePtr(req.CalledAt),
		CompletedAt: timePtr(req.CompletedAt),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, t)
}

func (h *Handler) callToken(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Queue.Call(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, t)
}

func (h *Handler) startConsultation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	v, err := h.svc.Queue.Start(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, v)
}

func (h *Handler) completeConsultation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	v, err := h.svc.Queue.Complete(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, v)
}

// callNext takes an optional body; doctors may omit it to call their own
// queue.
func (h *Handler) callNext(c *gin.Context) {
	var req callNextRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Queue.CallNext(c.Request.Context(), principal(c), req.DoctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, t)
}

func (h *Handler) doctorQueue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	day, ok := queryDay(c)
	if !ok {
		return
	}
	entries, err := h.svc.Queue.DoctorQueue(c.Request.Context(), principal(c), id, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entries)
}

func (h *Handler) departmentQueue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	day, ok := queryDay(c)
	if !ok {
		return
	}
	entries, err := h.svc.Queue.DepartmentQueue(c.Request.Context(), principal(c), id, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entries)
}

func (h *Handler) repairQueue(c *gin.Context) {
	repaired, err := h.svc.Queue.Repair(c.Request.Context(), principal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, repaired)
}
