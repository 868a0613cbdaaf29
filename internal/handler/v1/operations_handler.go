package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/drug"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
)

type createDrugRequest struct {
	Name           string     `json:"name"`
	GenericName    string     `json:"genericName"`
	Manufacturer   string     `json:"manufacturer"`
	BatchNumber    string     `json:"batchNumber"`
	ExpiryDate     *Timestamp `json:"expiryDate"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int64      `json:"unitPriceCents"`
	MinStockLevel  *int       `json:"minStockLevel"`
}

type updateDrugRequest struct {
	Name           *string    `json:"name"`
	GenericName    *string    `json:"genericName"`
	Manufacturer   *string    `json:"manufacturer"`
	BatchNumber    *string    `json:"batchNumber"`
	ExpiryDate     *Timestamp `json:"expiryDate"`
	Quantity       *int       `json:"quantity"`
	UnitPriceCents *int64     `json:"unitPriceCents"`
	MinStockLevel  *int       `json:"minStockLevel"`
	IsActive       *bool      `json:"isActive"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type theatreRequest struct {
	Name string `json:"name"`
}

type updateTheatreRequest struct {
	Name          *string    `json:"name"`
	IsAvailable   *bool      `json:"isAvailable"`
	NextAvailable *Timestamp `json:"nextAvailable"`
}

type createSurgeryRequest struct {
	PatientID     int64     `json:"patientId"`
	SurgeonID     int64     `json:"surgeonId"`
	TheatreID     int64     `json:"theatreId"`
	SurgeryType   string    `json:"surgeryType"`
	ScheduledDate Timestamp `json:"scheduledDate"`
	DurationMins  int       `json:"durationMins"`
	Notes         string    `json:"notes"`
}

type updateSurgeryRequest struct {
	ScheduledDate *Timestamp             `json:"scheduledDate"`
	DurationMins  *int                   `json:"durationMins"`
	Status        *theatre.SurgeryStatus `json:"status"`
	Notes         *string                `json:"notes"`
}

type createAlertRequest struct {
	Type     alert.Type `json:"type"`
	Location string     `json:"location"`
	Message  string     `json:"message"`
}

type updateAlertRequest struct {
	Location *string `json:"location"`
	Message  *string `json:"message"`
	IsActive *bool   `json:"isActive"`
}

// listDrugs accepts ?active=true and ?lowStock=true.
func (h *Handler) listDrugs(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	low, ok := queryBool(c, "lowStock")
	if !ok {
		return
	}
	q := &drug.ListQuery{
		ActiveOnly: active != nil && *active,
		LowStock:   low != nil && *low,
	}
	drugs, err := h.svc.Drugs.List(c.Request.Context(), principal(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, drugs)
}

func (h *Handler) lowStockDrugs(c *gin.Context) {
	drugs, err := h.svc.Drugs.LowStock(c.Request.Context(), principal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, drugs)
}

func (h *Handler) createDrug(c *gin.Context) {
	var req createDrugRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.Drugs.Create(c.Request.Context(), principal(c), &drug.CreateDrugCommand{
		Name:           req.Name,
		GenericName:    req.GenericName,
		Manufacturer:   req.Manufacturer,
		BatchNumber:    req.BatchNumber,
		ExpiryDate:     timePtr(req.ExpiryDate),
		Quantity:       req.Quantity,
		UnitPriceCents: req.UnitPriceCents,
		MinStockLevel:  req.MinStockLevel,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *Handler) updateDrug(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateDrugRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.Drugs.Update(c.Request.Context(), principal(c), id, &drug.Patch{
		Name:           req.Name,
		GenericName:    req.GenericName,
		Manufacturer:   req.Manufacturer,
		BatchNumber:    req.BatchNumber,
		ExpiryDate:     timePtr(req.ExpiryDate),
		Quantity:       req.Quantity,
		UnitPriceCents: req.UnitPriceCents,
		MinStockLevel:  req.MinStockLevel,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *Handler) adjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req adjustStockRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.Drugs.AdjustStock(c.Request.Context(), principal(c), id, req.Delta)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *Handler) listTheatres(c *gin.Context) {
	list, err := h.svc.Theatres.Theatres(c.Request.Context(), principal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *Handler) createTheatre(c *gin.Context) {
	var req theatreRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Theatres.CreateTheatre(c.Request.Context(), principal(c), &theatre.CreateTheatreCommand{Name: req.Name})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, t)
}

func (h *Handler) updateTheatre(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateTheatreRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Theatres.UpdateTheatre(c.Request.Context(), principal(c), id, &theatre.TheatrePatch{
		Name:          req.Name,
		IsAvailable:   req.IsAvailable,
		NextAvailable: timePtr(req.NextAvailable),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, t)
}

func (h *Handler) theatreSurgeries(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.respondSurgeries(c, &theatre.SurgeryQuery{TheatreID: &id})
}

// listSurgeries accepts ?theatreId, ?surgeonId and ?patientId filters.
func (h *Handler) listSurgeries(c *gin.Context) {
	q := &theatre.SurgeryQuery{}
	var ok bool
	if q.TheatreID, ok = queryID(c, "theatreId"); !ok {
		return
	}
	if q.SurgeonID, ok = queryID(c, "surgeonId"); !ok {
		return
	}
	if q.PatientID, ok = queryID(c, "patientId"); !ok {
		return
	}
	h.respondSurgeries(c, q)
}

func (h *Handler) respondSurgeries(c *gin.Context, q *theatre.SurgeryQuery) {
	views, err := h.svc.Theatres.Surgeries(c.Request.Context(), principal(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) createSurgery(c *gin.Context) {
	var req createSurgeryRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.Theatres.CreateSurgery(c.Request.Context(), principal(c), &theatre.CreateSurgeryCommand{
		PatientID:     req.PatientID,
		SurgeonID:     req.SurgeonID,
		TheatreID:     req.TheatreID,
		SurgeryType:   req.SurgeryType,
		ScheduledDate: req.ScheduledDate.Time,
		DurationMins:  req.DurationMins,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, view)
}

func (h *Handler) updateSurgery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateSurgeryRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.Theatres.UpdateSurgery(c.Request.Context(), principal(c), id, &theatre.SurgeryPatch{
		ScheduledDate: timePtr(req.ScheduledDate),
		DurationMins:  req.DurationMins,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *Handler) listAlerts(c *gin.Context) {
	h.respondAlerts(c, false)
}

func (h *Handler) activeAlerts(c *gin.Context) {
	h.respondAlerts(c, true)
}

func (h *Handler) respondAlerts(c *gin.Context, activeOnly bool) {
	views, err := h.svc.Alerts.List(c.Request.Context(), principal(c), activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, views)
}

func (h *Handler) createAlert(c *gin.Context) {
	var req createAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.svc.Alerts.Create(c.Request.Context(), principal(c), &alert.CreateAlertCommand{
		Type:     req.Type,
		Location: req.Location,
		Message:  req.Message,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

// updateAlert edits an alert; isActive=false resolves it.
func (h *Handler) updateAlert(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.svc.Alerts.Update(c.Request.Context(), principal(c), id, service.AlertUpdate{
		Location: req.Location,
		Message:  req.Message,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) resolveAlert(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Alerts.Resolve(c.Request.Context(), principal(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}
