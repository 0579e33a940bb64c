package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/ibp/internal/model"
)

// LookupRetention lookups kept from before a view; the view itself adds one more.
const LookupRetention = 2

type InmateRepository interface {
	GetByAutoID(ctx context.Context, autoID uint) (*model.Inmate, error)
	GetByKey(ctx context.Context, jurisdiction string, id int64) (*model.Inmate, error)
	ListByID(ctx context.Context, id int64) ([]model.Inmate, error)
	SearchByName(ctx context.Context, firstName, lastName string) ([]model.Inmate, error)
	Upsert(ctx context.Context, inmates []*model.Inmate) error
	RecordLookup(ctx context.Context, autoID uint, at time.Time) error
}

type inmateRepository struct {
	db *gorm.DB
}

func NewInmateRepository(db *gorm.DB) InmateRepository { return &inmateRepository{db: db} }

// withChildren preloads the aggregate, children newest first.
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Unit").
		Preload("Lookups", func(tx *gorm.DB) *gorm.DB { return tx.Order("datetime DESC") }).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("datetime DESC") }).
		Preload("Requests", func(tx *gorm.DB) *gorm.DB { return tx.Order("date_postmarked DESC, autoid DESC") }).
		Preload("Alerts")
}

func (r *inmateRepository) GetByAutoID(ctx context.Context, autoID uint) (*model.Inmate, error) {
	var in model.Inmate
	if err := withChildren(r.db.WithContext(ctx)).First(&in, "autoid = ?", autoID).Error; err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *inmateRepository) GetByKey(ctx context.Context, jurisdiction string, id int64) (*model.Inmate, error) {
	var in model.Inmate
	err := withChildren(r.db.WithContext(ctx)).
		Where("jurisdiction = ? AND id = ?", jurisdiction, id).
		First(&in).Error
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *inmateRepository) ListByID(ctx context.Context, id int64) ([]model.Inmate, error) {
	var res []model.Inmate
	err := r.db.WithContext(ctx).Preload("Unit").
		Where("id = ?", id).
		Order("jurisdiction").
		Find(&res).Error
	return res, err
}

// SearchByName matches the last name exactly and the first name by prefix, case-insensitively.
func (r *inmateRepository) SearchByName(ctx context.Context, firstName, lastName string) ([]model.Inmate, error) {
	var res []model.Inmate
	err := r.db.WithContext(ctx).Preload("Unit").
		Where("LOWER(last_name) = ?", strings.ToLower(lastName)).
		Where("LOWER(first_name) LIKE ?", strings.ToLower(firstName)+"%").
		Order("last_name, first_name, jurisdiction, id").
		Find(&res).Error
	return res, err
}

// Upsert merges provider data by natural key; local children are untouched.
func (r *inmateRepository) Upsert(ctx context.Context, inmates []*model.Inmate) error {
	if len(inmates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertInmates(tx, inmates)
	})
}

var inmateDataColumns = []string{
	"first_name", "last_name", "sex", "race", "url", "release", "datetime_fetched", "unit_autoid",
}

func upsertInmates(tx *gorm.DB, inmates []*model.Inmate) error {
	for _, in := range inmates {
		if in.AutoID != 0 {
			err := tx.Model(in).Select(inmateDataColumns).
				Updates(in).Error
			if err != nil {
				return err
			}
			continue
		}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "jurisdiction"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns(inmateDataColumns),
		}).Create(in).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// RecordLookup keeps the LookupRetention newest lookups and appends one at at.
func (r *inmateRepository) RecordLookup(ctx context.Context, autoID uint, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var keep []uint
		if err := tx.Model(&model.Lookup{}).
			Where("inmate_autoid = ?", autoID).
			Order("datetime DESC, autoid DESC").
			Limit(LookupRetention).
			Pluck("autoid", &keep).Error; err != nil {
			return err
		}
		del := tx.Where("inmate_autoid = ?", autoID)
		if len(keep) > 0 {
			del = del.Where("autoid NOT IN ?", keep)
		}
		if err := del.Delete(&model.Lookup{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Lookup{InmateAutoID: autoID, Datetime: at}).Error
	})
}
