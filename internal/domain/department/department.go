package department

import (
	"strings"
	"time"
	"unicode"
)

// fallbackCode prefixes token numbers for departments whose name has no letters.
const fallbackCode = "TKN"

const codeLength = 3

type Department struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Name        string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	IsActive    bool   `gorm:"column:is_active;default:true;index" json:"isActive"`
}

func (Department) TableName() string {
	return "departments"
}

// Code returns the short uppercase prefix used in token numbers: the first
// three letters of the name ("Cardiology" -> "CAR").
func (d *Department) Code() string {
	var b strings.Builder
	n := 0
	for _, r := range d.Name {
		if !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		n++
		if n == codeLength {
			break
		}
	}
	if n == 0 {
		return fallbackCode
	}
	return b.String()
}

type CreateDepartmentCommand struct {
	Name        string
	Description string
}

type Patch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

func (p *Patch) Apply(d *Department) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
}
