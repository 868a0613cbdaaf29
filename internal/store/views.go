package store

import (
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
)

// Views embed the record so its fields serialize flat, with the related
// records inlined under their own keys.

type PatientView struct {
	*patient.Patient
	User *domain.User `json:"user"`
}

type DoctorView struct {
	*staff.Doctor
	User       *domain.User           `json:"user"`
	Department *department.Department `json:"department"`
}

type NurseView struct {
	*staff.Nurse
	User       *domain.User           `json:"user"`
	Department *department.Department `json:"department"`
}

type PharmacistView struct {
	*staff.Pharmacist
	User *domain.User `json:"user"`
}

type AppointmentView struct {
	*appointment.Appointment
	Patient    *PatientView           `json:"patient"`
	Doctor     *DoctorView            `json:"doctor"`
	Department *department.Department `json:"department"`
}

type TokenView struct {
	*token.Token
	Appointment *AppointmentView       `json:"appointment"`
	Department  *department.Department `json:"department"`
}

type PrescriptionView struct {
	*prescription.Prescription
	Patient *PatientView `json:"patient"`
	Doctor  *DoctorView  `json:"doctor"`
}

type SurgeryView struct {
	*theatre.Surgery
	Patient *PatientView              `json:"patient"`
	Surgeon *DoctorView               `json:"surgeon"`
	Theatre *theatre.OperationTheatre `json:"theatre"`
}

type AlertView struct {
	*alert.EmergencyAlert
	Creator *domain.User `json:"creator"`
}
