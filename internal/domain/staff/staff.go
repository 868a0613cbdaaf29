package staff

type DoctorType string

const (
	DoctorConsultant DoctorType = "consultant"
	DoctorSurgeon    DoctorType = "surgeon"
	DoctorSpecialist DoctorType = "specialist"
	DoctorEmergency  DoctorType = "emergency"
)

type Doctor struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64 `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`
	DepartmentID int64 `gorm:"column:department_id;not null;index" json:"departmentId"`

	Specialization string     `gorm:"column:specialization;type:varchar(100);not null" json:"specialization"`
	Type           DoctorType `gorm:"column:type;type:varchar(30);not null" json:"type"`
	LicenseNumber  string     `gorm:"column:license_number;type:varchar(50);not null" json:"licenseNumber"`
	IsAvailable    bool       `gorm:"column:is_available;default:true" json:"isAvailable"`
}

func (Doctor) TableName() string {
	return "doctors"
}

type DoctorPatch struct {
	DepartmentID   *int64
	Specialization *string
	Type           *DoctorType
	IsAvailable    *bool
}

func (p *DoctorPatch) Apply(d *Doctor) {
	if p.DepartmentID != nil {
		d.DepartmentID = *p.DepartmentID
	}
	if p.Specialization != nil {
		d.Specialization = *p.Specialization
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.IsAvailable != nil {
		d.IsAvailable = *p.IsAvailable
	}
}

// DoctorQuery filters doctor listings; a nil field matches everything.
type DoctorQuery struct {
	DepartmentID *int64
	Available    *bool
}

func (q *DoctorQuery) Matches(d *Doctor) bool {
	if q == nil {
		return true
	}
	if q.DepartmentID != nil && d.DepartmentID != *q.DepartmentID {
		return false
	}
	if q.Available != nil && d.IsAvailable != *q.Available {
		return false
	}
	return true
}

type Shift string

const (
	ShiftDay   Shift = "day"
	ShiftNight Shift = "night"
)

func (s Shift) IsValid() bool {
	return s == ShiftDay || s == ShiftNight
}

type Nurse struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64 `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`
	DepartmentID int64 `gorm:"column:department_id;not null;index" json:"departmentId"`

	Shift    Shift `gorm:"column:shift;type:varchar(10);not null" json:"shift"`
	IsOnDuty bool  `gorm:"column:is_on_duty;default:false" json:"isOnDuty"`
}

func (Nurse) TableName() string {
	return "nurses"
}

type NursePatch struct {
	DepartmentID *int64
	Shift        *Shift
	IsOnDuty     *bool
}

func (p *NursePatch) Apply(n *Nurse) {
	if p.DepartmentID != nil {
		n.DepartmentID = *p.DepartmentID
	}
	if p.Shift != nil {
		n.Shift = *p.Shift
	}
	if p.IsOnDuty != nil {
		n.IsOnDuty = *p.IsOnDuty
	}
}

type Position string

const (
	PositionPharmacist Position = "pharmacist"
	PositionTechnician Position = "technician"
)

func (p Position) IsValid() bool {
	return p == PositionPharmacist || p == PositionTechnician
}

// Pharmacist is a pharmacy staff profile. Unlike doctors and nurses it does
// not belong to a department.
type Pharmacist struct {
	ID       int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64    `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`
	Position Position `gorm:"column:position;type:varchar(20);not null" json:"position"`
	IsOnDuty bool     `gorm:"column:is_on_duty;default:false" json:"isOnDuty"`
}

func (Pharmacist) TableName() string {
	return "pharmacy_staff"
}

type PharmacistPatch struct {
	Position *Position
	IsOnDuty *bool
}

func (p *PharmacistPatch) Apply(s *Pharmacist) {
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.IsOnDuty != nil {
		s.IsOnDuty = *p.IsOnDuty
	}
}

type CreateDoctorCommand struct {
	UserID         int64
	DepartmentID   int64
	Specialization string
	Type           DoctorType
	LicenseNumber  string
}

type CreateNurseCommand struct {
	UserID       int64
	DepartmentID int64
	Shift        Shift
}

type CreatePharmacistCommand struct {
	UserID   int64
	Position Position
}
