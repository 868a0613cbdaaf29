package alert

import "time"

type Type string

const (
	TypeCodeRed    Type = "code-red"
	TypeCodeBlue   Type = "code-blue"
	TypeCodeYellow Type = "code-yellow"
	TypeCodeGreen  Type = "code-green"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeCodeRed, TypeCodeBlue, TypeCodeYellow, TypeCodeGreen:
		return true
	}
	return false
}

type EmergencyAlert struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	Type      Type   `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Location  string `gorm:"column:location;type:varchar(200);not null" json:"location"`
	Message   string `gorm:"column:message;type:text" json:"message,omitempty"`
	IsActive  bool   `gorm:"column:is_active;default:true;index" json:"isActive"`
	CreatedBy int64  `gorm:"column:created_by;not null" json:"createdBy"`

	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
}

func (EmergencyAlert) TableName() string {
	return "emergency_alerts"
}

type CreateAlertCommand struct {
	Type     Type
	Location string
	Message  string
}

type Patch struct {
	Location   *string
	Message    *string
	IsActive   *bool
	ResolvedAt *time.Time
}

func (p *Patch) Apply(a *EmergencyAlert) {
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.Message != nil {
		a.Message = *p.Message
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	if p.ResolvedAt != nil {
		at := *p.ResolvedAt
		a.ResolvedAt = &at
	}
}

type ListQuery struct {
	ActiveOnly bool
}

func (q *ListQuery) Matches(a *EmergencyAlert) bool {
	return q == nil || !q.ActiveOnly || a.IsActive
}
