package patient

import "time"

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

type BloodGroup string

const (
	BloodGroupAPos    BloodGroup = "A+"
	BloodGroupANeg    BloodGroup = "A-"
	BloodGroupBPos    BloodGroup = "B+"
	BloodGroupBNeg    BloodGroup = "B-"
	BloodGroupABPos   BloodGroup = "AB+"
	BloodGroupABNeg   BloodGroup = "AB-"
	BloodGroupOPos    BloodGroup = "O+"
	BloodGroupONeg    BloodGroup = "O-"
	BloodGroupUnknown BloodGroup = ""
)

func (b BloodGroup) IsValid() bool {
	switch b {
	case BloodGroupAPos, BloodGroupANeg, BloodGroupBPos, BloodGroupBNeg,
		BloodGroupABPos, BloodGroupABNeg, BloodGroupOPos, BloodGroupONeg, BloodGroupUnknown:
		return true
	}
	return false
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
}

// Patient is the medical profile owned by a patient user.
type Patient struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`

	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth,omitempty"`
	Gender      Gender     `gorm:"column:gender;type:varchar(20)" json:"gender,omitempty"`
	Address     string     `gorm:"column:address;type:text" json:"address,omitempty"`
	BloodGroup  BloodGroup `gorm:"column:blood_group;type:varchar(5)" json:"bloodGroup,omitempty"`

	EmergencyContact *EmergencyContact `gorm:"column:emergency_contact;serializer:json" json:"emergencyContact,omitempty"`
	Allergies        []string          `gorm:"column:allergies;serializer:json" json:"allergies"`
}

func (Patient) TableName() string {
	return "patients"
}

// Age is measured in whole years at the given instant; zero when the date of
// birth is unknown.
func (p *Patient) Age(now time.Time) int {
	if p.DateOfBirth == nil {
		return 0
	}
	dob := *p.DateOfBirth
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

type CreatePatientCommand struct {
	UserID           int64
	DateOfBirth      *time.Time
	Gender           Gender
	Address          string
	BloodGroup       BloodGroup
	EmergencyContact *EmergencyContact
	Allergies        []string
}

type Patch struct {
	DateOfBirth      *time.Time
	Gender           *Gender
	Address          *string
	BloodGroup       *BloodGroup
	EmergencyContact *EmergencyContact
	Allergies        *[]string
}

func (p *Patch) Apply(pt *Patient) {
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		pt.DateOfBirth = &dob
	}
	if p.Gender != nil {
		pt.Gender = *p.Gender
	}
	if p.Address != nil {
		pt.Address = *p.Address
	}
	if p.BloodGroup != nil {
		pt.BloodGroup = *p.BloodGroup
	}
	if p.EmergencyContact != nil {
		ec := *p.EmergencyContact
		pt.EmergencyContact = &ec
	}
	if p.Allergies != nil {
		pt.Allergies = append([]string(nil), (*p.Allergies)...)
	}
}
