package drug

import "time"

const DefaultMinStockLevel = 10

type Drug struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Name         string     `gorm:"column:name;type:varchar(200);not null;index" json:"name"`
	GenericName  string     `gorm:"column:generic_name;type:varchar(200)" json:"genericName,omitempty"`
	Manufacturer string     `gorm:"column:manufacturer;type:varchar(200)" json:"manufacturer,omitempty"`
	BatchNumber  string     `gorm:"column:batch_number;type:varchar(50)" json:"batchNumber,omitempty"`
	ExpiryDate   *time.Time `gorm:"column:expiry_date" json:"expiryDate,omitempty"`

	Quantity       int   `gorm:"column:quantity;not null;default:0" json:"quantity"`
	UnitPriceCents int64 `gorm:"column:unit_price_cents;not null;default:0" json:"unitPriceCents"`
	MinStockLevel  int   `gorm:"column:min_stock_level;not null;default:10" json:"minStockLevel"`
	IsActive       bool  `gorm:"column:is_active;default:true" json:"isActive"`
}

func (Drug) TableName() string {
	return "drugs"
}

func (d *Drug) IsLowStock() bool {
	return d.Quantity <= d.MinStockLevel
}

func (d *Drug) IsExpired(now time.Time) bool {
	return d.ExpiryDate != nil && !now.Before(*d.ExpiryDate)
}

type CreateDrugCommand struct {
	Name           string
	GenericName    string
	Manufacturer   string
	BatchNumber    string
	ExpiryDate     *time.Time
	Quantity       int
	UnitPriceCents int64
	MinStockLevel  *int
}

type Patch struct {
	Name           *string
	GenericName    *string
	Manufacturer   *string
	BatchNumber    *string
	ExpiryDate     *time.Time
	Quantity       *int
	UnitPriceCents *int64
	MinStockLevel  *int
	IsActive       *bool
}

func (p *Patch) Apply(d *Drug) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.GenericName != nil {
		d.GenericName = *p.GenericName
	}
	if p.Manufacturer != nil {
		d.Manufacturer = *p.Manufacturer
	}
	if p.BatchNumber != nil {
		d.BatchNumber = *p.BatchNumber
	}
	if p.ExpiryDate != nil {
		at := *p.ExpiryDate
		d.ExpiryDate = &at
	}
	if p.Quantity != nil {
		d.Quantity = *p.Quantity
	}
	if p.UnitPriceCents != nil {
		d.UnitPriceCents = *p.UnitPriceCents
	}
	if p.MinStockLevel != nil {
		d.MinStockLevel = *p.MinStockLevel
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
}

type ListQuery struct {
	ActiveOnly bool
	LowStock   bool
}

func (q *ListQuery) Matches(d *Drug) bool {
	if q == nil {
		return true
	}
	if q.ActiveOnly && !d.IsActive {
		return false
	}
	if q.LowStock && !d.IsLowStock() {
		return false
	}
	return true
}
