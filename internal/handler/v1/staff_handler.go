package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
)

type departmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type createDoctorRequest struct {
	UserID         int64            `json:"userId"`
	DepartmentID   int64            `json:"departmentId"`
	Specialization string           `json:"specialization"`
	Type           staff.DoctorType `json:"type"`
	LicenseNumber  string           `json:"licenseNumber"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

type createNurseRequest struct {
	UserID       int64       `json:"userId"`
	DepartmentID int64       `json:"departmentId"`
	Shift        staff.Shift `json:"shift"`
}

type createPharmacistRequest struct {
	UserID   int64          `json:"userId"`
	Position staff.Position `json:"position"`
}

func (h *Handler) listDepartments(c *gin.Context) {
	depts, err := h.svc.Departments.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, depts)
}

func (h *Handler) getDepartment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.Departments.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *Handler) createDepartment(c *gin.Context) {
	var req departmentRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.Departments.Create(c.Request.Context(), principal(c), &department.CreateDepartmentCommand{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *Handler) updateDepartment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.Departments.Update(c.Request.Context(), principal(c), id, &department.Patch{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

// listDoctors accepts ?departmentId and ?available filters.
func (h *Handler) listDoctors(c *gin.Context) {
	q := &staff.DoctorQuery{}
	var ok bool
	if q.DepartmentID, ok = queryID(c, "departmentId"); !ok {
		return
	}
	if q.Available, ok = queryBool(c, "available"); !ok {
		return
	}
	h.respondDoctors(c, q)
}

func (h *Handler) departmentDoctors(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.respondDoctors(c, &staff.DoctorQuery{DepartmentID: &id})
}

func (h *Handler) respondDoctors(c *gin.Context, q *staff.DoctorQuery) {
	docs, err := h.svc.Staff.Doctors(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, docs)
}

func (h *Handler) getDoctor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.Staff.Doctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *Handler) createDoctor(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.Staff.CreateDoctor(c.Request.Context(), principal(c), &staff.CreateDoctorCommand{
		UserID:         req.UserID,
		DepartmentID:   req.DepartmentID,
		Specialization: req.Specialization,
		Type:           req.Type,
		LicenseNumber:  req.LicenseNumber,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *Handler) setDoctorAvailability(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req availabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.Staff.SetDoctorAvailability(c.Request.Context(), principal(c), id, *req.IsAvailable)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *Handler) listNurses(c *gin.Context) {
	nurses, err := h.svc.Staff.Nurses(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, nurses)
}

func (h *Handler) createNurse(c *gin.Context) {
	var req createNurseRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.svc.Staff.CreateNurse(c.Request.Context(), principal(c), &staff.CreateNurseCommand{
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		Shift:        req.Shift,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, n)
}

func (h *Handler) listPharmacists(c *gin.Context) {
	list, err := h.svc.Staff.Pharmacists(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *Handler) createPharmacist(c *gin.Context) {
	var req createPharmacistRequest
	if !bindJSON(c, &req) {
		return
	}
	ph, err := h.svc.Staff.CreatePharmacist(c.Request.Context(), principal(c), &staff.CreatePharmacistCommand{
		UserID:   req.UserID,
		Position: req.Position,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, ph)
}
