package theatre

import (
	"slices"
	"time"
)

type OperationTheatre struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Name             string     `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	IsAvailable      bool       `gorm:"column:is_available;default:true" json:"isAvailable"`
	CurrentSurgeryID *int64     `gorm:"column:current_surgery_id" json:"currentSurgeryId,omitempty"`
	NextAvailable    *time.Time `gorm:"column:next_available" json:"nextAvailable,omitempty"`
}

func (OperationTheatre) TableName() string {
	return "operation_theatres"
}

type TheatrePatch struct {
	Name             *string
	IsAvailable      *bool
	CurrentSurgeryID *int64
	NextAvailable    *time.Time
}

func (p *TheatrePatch) Apply(t *OperationTheatre) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.IsAvailable != nil {
		t.IsAvailable = *p.IsAvailable
	}
	if p.CurrentSurgeryID != nil {
		id := *p.CurrentSurgeryID
		t.CurrentSurgeryID = &id
	}
	if p.NextAvailable != nil {
		at := *p.NextAvailable
		t.NextAvailable = &at
	}
}

type SurgeryStatus string

const (
	SurgeryScheduled  SurgeryStatus = "scheduled"
	SurgeryInProgress SurgeryStatus = "in-progress"
	SurgeryCompleted  SurgeryStatus = "completed"
	SurgeryCancelled  SurgeryStatus = "cancelled"
)

func (s SurgeryStatus) IsValid() bool {
	switch s {
	case SurgeryScheduled, SurgeryInProgress, SurgeryCompleted, SurgeryCancelled:
		return true
	}
	return false
}

var surgeryTransitions = map[SurgeryStatus][]SurgeryStatus{
	SurgeryScheduled:  {SurgeryInProgress, SurgeryCancelled},
	SurgeryInProgress: {SurgeryCompleted, SurgeryCancelled},
	SurgeryCompleted:  {},
	SurgeryCancelled:  {},
}

type Surgery struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	PatientID int64 `gorm:"column:patient_id;not null;index" json:"patientId"`
	SurgeonID int64 `gorm:"column:surgeon_id;not null;index" json:"surgeonId"`
	TheatreID int64 `gorm:"column:theatre_id;not null;index" json:"theatreId"`

	SurgeryType   string        `gorm:"column:surgery_type;type:varchar(200);not null" json:"surgeryType"`
	ScheduledDate time.Time     `gorm:"column:scheduled_date;not null;index" json:"scheduledDate"`
	DurationMins  int           `gorm:"column:duration_mins;not null" json:"durationMins"`
	Status        SurgeryStatus `gorm:"column:status;type:varchar(20);not null;default:'scheduled'" json:"status"`
	Notes         string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

func (Surgery) TableName() string {
	return "surgeries"
}

func (s *Surgery) CanTransitionTo(next SurgeryStatus) bool {
	return slices.Contains(surgeryTransitions[s.Status], next)
}

func (s *Surgery) EndsAt() time.Time {
	return s.ScheduledDate.Add(time.Duration(s.DurationMins) * time.Minute)
}

type CreateTheatreCommand struct {
	Name string
}

type CreateSurgeryCommand struct {
	PatientID     int64
	SurgeonID     int64
	TheatreID     int64
	SurgeryType   string
	ScheduledDate time.Time
	DurationMins  int
	Notes         string
}

type SurgeryPatch struct {
	ScheduledDate *time.Time
	DurationMins  *int
	Status        *SurgeryStatus
	Notes         *string
}

func (p *SurgeryPatch) Apply(s *Surgery) {
	if p.ScheduledDate != nil {
		s.ScheduledDate = *p.ScheduledDate
	}
	if p.DurationMins != nil {
		s.DurationMins = *p.DurationMins
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
}

type SurgeryQuery struct {
	TheatreID *int64
	SurgeonID *int64
	PatientID *int64
}

func (q *SurgeryQuery) Matches(s *Surgery) bool {
	if q == nil {
		return true
	}
	if q.TheatreID != nil && s.TheatreID != *q.TheatreID {
		return false
	}
	if q.SurgeonID != nil && s.SurgeonID != *q.SurgeonID {
		return false
	}
	if q.PatientID != nil && s.PatientID != *q.PatientID {
		return false
	}
	return true
}
