package prescription

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDispensed Status = "dispensed"
)

// Medication is one line of a prescription. Order within a prescription is
// preserved.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Missing lists the required fields that are blank.
func (m Medication) Missing() []string {
	var out []string
	if strings.TrimSpace(m.Name) == "" {
		out = append(out, "name")
	}
	if strings.TrimSpace(m.Dosage) == "" {
		out = append(out, "dosage")
	}
	if strings.TrimSpace(m.Frequency) == "" {
		out = append(out, "frequency")
	}
	if strings.TrimSpace(m.Duration) == "" {
		out = append(out, "duration")
	}
	return out
}

type Prescription struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	AppointmentID int64 `gorm:"column:appointment_id;not null;index" json:"appointmentId"`
	DoctorID      int64 `gorm:"column:doctor_id;not null;index" json:"doctorId"`
	PatientID     int64 `gorm:"column:patient_id;not null;index" json:"patientId"`

	Medications  []Medication `gorm:"column:medications;serializer:json;not null" json:"medications"`
	Instructions string       `gorm:"column:instructions;type:text" json:"instructions,omitempty"`
	Status       Status       `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`

	DispensedAt *time.Time `gorm:"column:dispensed_at" json:"dispensedAt,omitempty"`
	DispensedBy *int64     `gorm:"column:dispensed_by" json:"dispensedBy,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

func (p *Prescription) IsDispensed() bool {
	return p.Status == StatusDispensed
}

type CreatePrescriptionCommand struct {
	AppointmentID int64
	Medications   []Medication
	Instructions  string
}

type Patch struct {
	Status      *Status
	DispensedAt *time.Time
	DispensedBy *int64
}

func (p *Patch) Apply(pr *Prescription) {
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.DispensedAt != nil {
		at := *p.DispensedAt
		pr.DispensedAt = &at
	}
	if p.DispensedBy != nil {
		by := *p.DispensedBy
		pr.DispensedBy = &by
	}
}

type ListQuery struct {
	PatientID     *int64
	DoctorID      *int64
	AppointmentID *int64
	Status        *Status
}

func (q *ListQuery) Matches(p *Prescription) bool {
	if q == nil {
		return true
	}
	if q.PatientID != nil && p.PatientID != *q.PatientID {
		return false
	}
	if q.DoctorID != nil && p.DoctorID != *q.DoctorID {
		return false
	}
	if q.AppointmentID != nil && p.AppointmentID != *q.AppointmentID {
		return false
	}
	if q.Status != nil && p.Status != *q.Status {
		return false
	}
	return true
}
