package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/ibp/internal/model"
)

type AlertRepository interface {
	ListByInmate(ctx context.Context, inmateAutoID uint) ([]model.Alert, error)
	Create(ctx context.Context, a *model.Alert) error
	Delete(ctx context.Context, autoID uint) error
	MarkNotified(ctx context.Context, autoIDs []uint, at time.Time) error
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository { return &alertRepository{db: db} }

func (r *alertRepository) ListByInmate(ctx context.Context, inmateAutoID uint) ([]model.Alert, error) {
	var res []model.Alert
	err := r.db.WithContext(ctx).Where("inmate_autoid = ?", inmateAutoID).Order("created_at").Find(&res).Error
	return res, err
}

func (r *alertRepository) Create(ctx context.Context, a *model.Alert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alertRepository) Delete(ctx context.Context, autoID uint) error {
	return deleteByAutoID(r.db.WithContext(ctx), &model.Alert{}, autoID)
}

func (r *alertRepository) MarkNotified(ctx context.Context, autoIDs []uint, at time.Time) error {
	if len(autoIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("autoid IN ?", autoIDs).
		Update("notified_at", at).Error
}
