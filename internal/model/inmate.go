package model

import "time"

// Jurisdictions served by the inmate-data providers.
const (
	JurisdictionTexas   = "Texas"
	JurisdictionFederal = "Federal"
)

// Inmate 在押人员；(jurisdiction, id) 为自然键
type Inmate struct {
	AutoID       uint   `gorm:"primaryKey;column:autoid"`
	Jurisdiction string `gorm:"type:varchar(16);not null;uniqueIndex:ux_inmate_key"`
	ID           int64  `gorm:"column:id;not null;autoIncrement:false;uniqueIndex:ux_inmate_key"`

	FirstName string `gorm:"index:idx_inmate_name"`
	LastName  string `gorm:"index:idx_inmate_name"`
	Sex       string
	Race      string
	URL       string
	// Release is free text as reported by the provider ("2031-04-02", "LIFE SENTENCE", ...).
	Release         string
	DatetimeFetched *time.Time

	UnitAutoID *uint `gorm:"column:unit_autoid;index"`
	Unit       *Unit `gorm:"foreignKey:UnitAutoID;references:AutoID"`

	Lookups  []Lookup  `gorm:"foreignKey:InmateAutoID;references:AutoID;constraint:OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:InmateAutoID;references:AutoID;constraint:OnDelete:CASCADE"`
	Requests []Request `gorm:"foreignKey:InmateAutoID;references:AutoID;constraint:OnDelete:CASCADE"`
	Alerts   []Alert   `gorm:"foreignKey:InmateAutoID;references:AutoID;constraint:OnDelete:CASCADE"`
}

func (Inmate) TableName() string { return "inmates" }
