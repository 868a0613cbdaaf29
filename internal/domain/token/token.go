package token

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Status moves strictly forward:
//
//	waiting → called → serving → completed
//
// There is no cancelled token state; cancellation lives on the appointment.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCalled    Status = "called"
	StatusServing   Status = "serving"
	StatusCompleted Status = "completed"
)

var order = []Status{StatusWaiting, StatusCalled, StatusServing, StatusCompleted}

func (s Status) IsValid() bool {
	return slices.Contains(order, s)
}

// Rank is the position of s in the forward chain, or -1 if s is unknown.
func (s Status) Rank() int {
	return slices.Index(order, s)
}

// IsActive reports whether a token in this status still occupies a queue slot.
func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusCalled || s == StatusServing
}

// ActiveStatuses are the statuses that make up a live queue.
func ActiveStatuses() []Status {
	return []Status{StatusWaiting, StatusCalled, StatusServing}
}

type Token struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	AppointmentID int64  `gorm:"column:appointment_id;not null;uniqueIndex" json:"appointmentId"`
	DepartmentID  int64  `gorm:"column:department_id;not null;index" json:"departmentId"`
	TokenNumber   string `gorm:"column:token_number;type:varchar(20);not null;index" json:"tokenNumber"`
	Status        Status `gorm:"column:status;type:varchar(20);not null;default:'waiting';index" json:"status"`

	CalledAt    *time.Time `gorm:"column:called_at" json:"calledAt,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

func (Token) TableName() string {
	return "tokens"
}

// CanTransitionTo allows only the next status in the forward chain.
func (t *Token) CanTransitionTo(next Status) bool {
	r := t.Status.Rank()
	return r >= 0 && next.Rank() == r+1
}

// Before orders tokens by creation time, then id.
func (t *Token) Before(o *Token) bool {
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.Before(o.CreatedAt)
	}
	return t.ID < o.ID
}

const suffixSpace = 10000

// Suffix is the low four decimal digits of the epoch-millisecond timestamp.
func Suffix(at time.Time) int {
	ms := at.UnixMilli() % suffixSpace
	if ms < 0 {
		ms += suffixSpace
	}
	return int(ms)
}

func FormatNumber(code string, suffix int) string {
	return fmt.Sprintf("%s-%04d", code, suffix%suffixSpace)
}

// ParseNumber splits "CAR-0042" into its code and numeric suffix.
func ParseNumber(number string) (code string, suffix int, ok bool) {
	code, digits, found := strings.Cut(number, "-")
	if !found || code == "" || len(digits) != 4 {
		return "", 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return code, n, true
}

// NextFreeNumber starts at the suffix derived from at and advances by one,
// wrapping at 10000, until taken reports the number as free.
func NextFreeNumber(code string, at time.Time, taken func(string) bool) (string, error) {
	start := Suffix(at)
	for i := range suffixSpace {
		n := FormatNumber(code, (start+i)%suffixSpace)
		if !taken(n) {
			return n, nil
		}
	}
	return "", ErrNumberSpaceExhausted
}

type Patch struct {
	Status      *Status
	CalledAt    *time.Time
	CompletedAt *time.Time
}

func (p *Patch) Apply(t *Token) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CalledAt != nil {
		at := *p.CalledAt
		t.CalledAt = &at
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		t.CompletedAt = &at
	}
}

// ListQuery filters token listings. Empty slices and nil pointers match all.
type ListQuery struct {
	DepartmentID   *int64
	AppointmentIDs []int64
	Statuses       []Status
	TokenNumber    *string
}

func (q *ListQuery) Matches(t *Token) bool {
	if q == nil {
		return true
	}
	if q.DepartmentID != nil && t.DepartmentID != *q.DepartmentID {
		return false
	}
	if len(q.AppointmentIDs) > 0 && !slices.Contains(q.AppointmentIDs, t.AppointmentID) {
		return false
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, t.Status) {
		return false
	}
	if q.TokenNumber != nil && t.TokenNumber != *q.TokenNumber {
		return false
	}
	return true
}
