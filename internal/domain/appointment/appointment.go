package appointment

import (
	"slices"
	"time"
)

// Status transitions:
//
//	scheduled → in-progress → completed
//	scheduled → cancelled
//	in-progress → cancelled
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

type Appointment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	PatientID    int64 `gorm:"column:patient_id;not null;index" json:"patientId"`
	DoctorID     int64 `gorm:"column:doctor_id;not null;index" json:"doctorId"`
	DepartmentID int64 `gorm:"column:department_id;not null;index" json:"departmentId"`

	AppointmentDate time.Time `gorm:"column:appointment_date;not null;index" json:"appointmentDate"`
	TokenNumber     string    `gorm:"column:token_number;type:varchar(20);not null;index" json:"tokenNumber"`
	Status          Status    `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Notes           string    `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[a.Status], next)
}

// OnDay reports whether the appointment falls on the calendar day of day,
// evaluated in day's location.
func (a *Appointment) OnDay(day time.Time) bool {
	return SameDay(a.AppointmentDate, day)
}

func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type CreateAppointmentCommand struct {
	PatientID       int64
	DoctorID        int64
	DepartmentID    int64
	AppointmentDate time.Time
	TokenNumber     string
	Notes           string
}

// Patch is a shallow merge; only non-nil fields are written.
type Patch struct {
	AppointmentDate *time.Time
	Notes           *string
	Status          *Status
	CancelledAt     *time.Time
	CompletedAt     *time.Time
}

func (p *Patch) Apply(a *Appointment) {
	if p.AppointmentDate != nil {
		a.AppointmentDate = *p.AppointmentDate
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.CancelledAt != nil {
		t := *p.CancelledAt
		a.CancelledAt = &t
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		a.CompletedAt = &t
	}
}

// ListQuery filters appointment listings; nil fields match everything.
type ListQuery struct {
	PatientID    *int64
	DoctorID     *int64
	DepartmentID *int64
	Status       *Status
	Day          *time.Time
}

func (q *ListQuery) Matches(a *Appointment) bool {
	if q == nil {
		return true
	}
	if q.PatientID != nil && a.PatientID != *q.PatientID {
		return false
	}
	if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
		return false
	}
	if q.DepartmentID != nil && a.DepartmentID != *q.DepartmentID {
		return false
	}
	if q.Status != nil && a.Status != *q.Status {
		return false
	}
	if q.Day != nil && !a.OnDay(*q.Day) {
		return false
	}
	return true
}
