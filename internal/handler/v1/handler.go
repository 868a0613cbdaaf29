// Package v1 is the JSON API under /api/v1. Handlers decode the request,
// call one service method with the caller's principal and translate the
// outcome; every rule lives in the services.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
)

// Services are the workflows the API exposes.
type Services struct {
	Auth          *service.AuthService
	Queue         *service.QueueService
	Appointments  *service.AppointmentService
	Departments   *service.DepartmentService
	Staff         *service.StaffService
	Patients      *service.PatientService
	Prescriptions *service.PrescriptionService
	Drugs         *service.DrugService
	Theatres      *service.TheatreService
	Alerts        *service.AlertService
}

type Handler struct {
	svc      Services
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewHandler builds the API. checkOrigin decides which browser origins may
// open the realtime channel.
func NewHandler(svc Services, hub *realtime.Hub, checkOrigin func(r *http.Request) bool) *Handler {
	return &Handler{
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Register mounts every route on rg. authLimit runs in front of the
// credential endpoints only; requireAuth guards the staff directories.
func (h *Handler) Register(rg *gin.RouterGroup, authLimit, requireAuth gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authLimit, h.register)
		authGroup.POST("/login", authLimit, h.login)
		authGroup.POST("/refresh", authLimit, h.refresh)
		authGroup.GET("/me", h.me)
		authGroup.POST("/change-password", authLimit, h.changePassword)
	}

	appts := rg.Group("/appointments")
	{
		appts.POST("", h.bookAppointment)
		appts.GET("", h.listAppointments)
		appts.GET("/mine", h.myAppointments)
		appts.GET("/doctor/:id", h.doctorAppointments)
		appts.GET("/patient/:id", h.patientAppointments)
		appts.GET("/:id", h.getAppointment)
		appts.PATCH("/:id", h.updateAppointment)
		appts.POST("/:id/cancel", h.cancelAppointment)
	}

	tokens := rg.Group("/tokens")
	{
		tokens.GET("", h.listTokens)
		tokens.GET("/department/:id", h.departmentTokens)
		tokens.PATCH("/:id", h.transitionToken)
		tokens.POST("/:id/call", h.callToken)
		tokens.POST("/:id/start", h.startConsultation)
		tokens.POST("/:id/complete", h.completeConsultation)
	}

	queue := rg.Group("/queue")
	{
		queue.POST("/call-next", h.callNext)
		queue.GET("/doctor/:id", h.doctorQueue)
		queue.GET("/department/:id", h.departmentQueue)
		queue.POST("/repair", h.repairQueue)
	}

	depts := rg.Group("/departments")
	{
		depts.GET("", h.listDepartments)
		depts.POST("", h.createDepartment)
		depts.GET("/:id", h.getDepartment)
		depts.PATCH("/:id", h.updateDepartment)
	}

	doctors := rg.Group("/doctors")
	{
		doctors.GET("", h.listDoctors)
		doctors.POST("", h.createDoctor)
		doctors.GET("/department/:id", h.departmentDoctors)
		doctors.GET("/:id", h.getDoctor)
		doctors.PATCH("/:id/availability", h.setDoctorAvailability)
	}

	rg.GET("/nurses", requireAuth, h.listNurses)
	rg.POST("/nurses", h.createNurse)
	rg.GET("/pharmacy-staff", requireAuth, h.listPharmacists)
	rg.POST("/pharmacy-staff", h.createPharmacist)

	patients := rg.Group("/patients")
	{
		patients.GET("", h.listPatients)
		patients.POST("", h.createPatient)
		patients.GET("/me", h.myPatientRecord)
		patients.GET("/:id", h.getPatient)
		patients.PATCH("/:id", h.updatePatient)
	}

	rx := rg.Group("/prescriptions")
	{
		rx.GET("", h.listPrescriptions)
		rx.POST("", h.createPrescription)
		rx.GET("/pending", h.pendingPrescriptions)
		rx.PATCH("/:id", h.updatePrescription)
		rx.POST("/:id/dispense", h.dispensePrescription)
	}

	drugs := rg.Group("/drugs")
	{
		drugs.GET("", h.listDrugs)
		drugs.POST("", h.createDrug)
		drugs.GET("/low-stock", h.lowStockDrugs)
		drugs.PATCH("/:id", h.updateDrug)
		drugs.POST("/:id/stock", h.adjustStock)
	}

	theatres := rg.Group("/operation-theatres")
	{
		theatres.GET("", h.listTheatres)
		theatres.POST("", h.createTheatre)
		theatres.PATCH("/:id", h.updateTheatre)
		theatres.GET("/:id/surgeries", h.theatreSurgeries)
	}

	surgeries := rg.Group("/surgeries")
	{
		surgeries.GET("", h.listSurgeries)
		surgeries.POST("", h.createSurgery)
		surgeries.PATCH("/:id", h.updateSurgery)
	}

	alerts := rg.Group("/emergency-alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.POST("", h.createAlert)
		alerts.GET("/active", h.activeAlerts)
		alerts.PATCH("/:id", h.updateAlert)
		alerts.POST("/:id/resolve", h.resolveAlert)
	}

	rg.GET("/ws", h.subscribe)
}
