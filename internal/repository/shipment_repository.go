package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/ibp/internal/model"
)

// ErrAlreadyShipped is returned when a request was linked to a shipment concurrently.
var ErrAlreadyShipped = errors.New("request already shipped")

type ShipmentRepository interface {
	// Create applies refreshed inmate data, inserts the shipment and links the
	// requests in one transaction.
	Create(ctx context.Context, shipment *model.Shipment, requestIDs []uint, refreshed []*model.Inmate) error
	GetByAutoID(ctx context.Context, autoID uint) (*model.Shipment, error)
	Update(ctx context.Context, shipment *model.Shipment) error
}

type shipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository { return &shipmentRepository{db: db} }

func (r *shipmentRepository) Create(ctx context.Context, shipment *model.Shipment, requestIDs []uint, refreshed []*model.Inmate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertInmates(tx, refreshed); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(shipment).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Request{}).
			Where("autoid IN ? AND shipment_autoid IS NULL", requestIDs).
			Update("shipment_autoid", shipment.AutoID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(requestIDs)) {
			return ErrAlreadyShipped
		}
		return nil
	})
}

func (r *shipmentRepository) GetByAutoID(ctx context.Context, autoID uint) (*model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).Preload("Unit").Preload("Requests").First(&s, "autoid = ?", autoID).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shipmentRepository) Update(ctx context.Context, shipment *model.Shipment) error {
	return r.db.WithContext(ctx).Model(shipment).Updates(map[string]interface{}{
		"date_shipped":  shipment.DateShipped,
		"tracking_url":  shipment.TrackingURL,
		"tracking_code": shipment.TrackingCode,
		"weight":        shipment.Weight,
		"postage":       shipment.Postage,
	}).Error
}
