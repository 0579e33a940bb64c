package model

// Shipping methods for a unit.
const (
	ShippingBox        = "Box"
	ShippingIndividual = "Individual"
)

// Unit 监狱单位，包裹的收件地址
type Unit struct {
	AutoID uint   `gorm:"primaryKey;column:autoid"`
	Name   string `gorm:"not null;uniqueIndex"`

	Street1 string `gorm:"not null"`
	Street2 string
	City    string `gorm:"not null"`
	State   string `gorm:"type:varchar(3);not null"`
	Zipcode string `gorm:"type:varchar(12);not null"`

	URL            string
	Jurisdiction   string `gorm:"type:varchar(16)"`
	ShippingMethod string `gorm:"type:varchar(16)"`
}

func (Unit) TableName() string { return "units" }
