package model

import "time"

// Request actions.
const (
	ActionFilled = "Filled"
	ActionTossed = "Tossed"
)

// Request 一封来信对应的包裹请求
type Request struct {
	AutoID         uint      `gorm:"primaryKey;column:autoid"`
	InmateAutoID   uint      `gorm:"column:inmate_autoid;not null;index"`
	DateProcessed  time.Time `gorm:"type:date;not null"`
	DatePostmarked time.Time `gorm:"type:date;not null;index"`
	Action         string    `gorm:"type:varchar(8);not null"`

	Inmate *Inmate `gorm:"foreignKey:InmateAutoID;references:AutoID"`

	ShipmentAutoID *uint     `gorm:"column:shipment_autoid;index"`
	Shipment       *Shipment `gorm:"foreignKey:ShipmentAutoID;references:AutoID"`
}

func (Request) TableName() string { return "requests" }

// IsValidAction reports whether a is one of the request actions.
func IsValidAction(a string) bool {
	return a == ActionFilled || a == ActionTossed
}
