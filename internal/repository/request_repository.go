package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/ibp/internal/model"
)

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	GetByAutoID(ctx context.Context, autoID uint) (*model.Request, error)
	GetByAutoIDs(ctx context.Context, autoIDs []uint) ([]model.Request, error)
	Update(ctx context.Context, req *model.Request) error
	Delete(ctx context.Context, autoID uint) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository { return &requestRepository{db: db} }

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *requestRepository) GetByAutoID(ctx context.Context, autoID uint) (*model.Request, error) {
	var req model.Request
	if err := r.db.WithContext(ctx).Preload("Inmate.Unit").First(&req, "autoid = ?", autoID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByAutoIDs returns the requests found, in autoid order; missing ids are simply absent.
func (r *requestRepository) GetByAutoIDs(ctx context.Context, autoIDs []uint) ([]model.Request, error) {
	var res []model.Request
	err := r.db.WithContext(ctx).Preload("Inmate.Unit").
		Where("autoid IN ?", autoIDs).
		Order("autoid").
		Find(&res).Error
	return res, err
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Model(req).Updates(map[string]interface{}{"date_postmarked": req.DatePostmarked, "action": req.Action}).Error
}

func (r *requestRepository) Delete(ctx context.Context, autoID uint) error {
	return deleteByAutoID(r.db.WithContext(ctx), &model.Request{}, autoID)
}

func deleteByAutoID(db *gorm.DB, value interface{}, autoID uint) error {
	res := db.Where("autoid = ?", autoID).Delete(value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
