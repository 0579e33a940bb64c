package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/ibp/internal/model"
)

type UnitRepository interface {
	List(ctx context.Context) ([]model.Unit, error)
	GetByAutoID(ctx context.Context, autoID uint) (*model.Unit, error)
	GetByName(ctx context.Context, name string) (*model.Unit, error)
	Update(ctx context.Context, unit *model.Unit) error
	UpsertByName(ctx context.Context, units []model.Unit) error
}

type unitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) UnitRepository { return &unitRepository{db: db} }

func (r *unitRepository) List(ctx context.Context) ([]model.Unit, error) {
	var res []model.Unit
	err := r.db.WithContext(ctx).Order("name").Find(&res).Error
	return res, err
}

func (r *unitRepository) GetByAutoID(ctx context.Context, autoID uint) (*model.Unit, error) {
	var u model.Unit
	if err := r.db.WithContext(ctx).First(&u, "autoid = ?", autoID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *unitRepository) GetByName(ctx context.Context, name string) (*model.Unit, error) {
	var u model.Unit
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *unitRepository) Update(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// UpsertByName inserts units, replacing address fields of units with the same name.
func (r *unitRepository) UpsertByName(ctx context.Context, units []model.Unit) error {
	if len(units) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"street1", "street2", "city", "state", "zipcode", "url", "jurisdiction", "shipping_method",
		}),
	}).Create(&units).Error
}
