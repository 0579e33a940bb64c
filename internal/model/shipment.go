package model

import "time"

// Shipment 一次寄送，包含同一 unit 的若干 request
type Shipment struct {
	AutoID       uint      `gorm:"primaryKey;column:autoid"`
	DateShipped  time.Time `gorm:"type:date;not null;index"`
	TrackingURL  string
	TrackingCode string
	Weight       int `gorm:"not null"` // ounces
	Postage      int `gorm:"not null"` // US cents

	UnitAutoID *uint `gorm:"column:unit_autoid;index"`
	Unit       *Unit `gorm:"foreignKey:UnitAutoID;references:AutoID"`

	Requests []Request `gorm:"foreignKey:ShipmentAutoID;references:AutoID"`
}

func (Shipment) TableName() string { return "shipments" }
