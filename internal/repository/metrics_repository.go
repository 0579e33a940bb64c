package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/ibp/internal/model"
)

// MonthValue is one bucket of a monthly series; Month is "YYYY-MM".
type MonthValue struct {
	Month string
	Value int64
}

type MetricsRepository interface {
	RequestCounts(ctx context.Context, since time.Time) ([]MonthValue, error)
	NewRequestCounts(ctx context.Context, since time.Time) ([]MonthValue, error)
	ShippedOunces(ctx context.Context, since time.Time) ([]MonthValue, error)
}

type metricsRepository struct {
	db *gorm.DB
}

func NewMetricsRepository(db *gorm.DB) MetricsRepository { return &metricsRepository{db: db} }

// yearMonth renders a "YYYY-MM" expression for the connected dialect.
func (r *metricsRepository) yearMonth(column string) string {
	if r.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM')", column)
	}
	return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
}

func (r *metricsRepository) RequestCounts(ctx context.Context, since time.Time) ([]MonthValue, error) {
	var rows []MonthValue
	ym := r.yearMonth("date_postmarked")
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select(ym+" AS month, COUNT(*) AS value").
		Where("action = ? AND date_postmarked >= ?", model.ActionFilled, since).
		Group(ym).
		Order("month").
		Scan(&rows).Error
	return rows, err
}

// NewRequestCounts counts inmates by the month of their first filled request.
func (r *metricsRepository) NewRequestCounts(ctx context.Context, since time.Time) ([]MonthValue, error) {
	var rows []MonthValue
	first := r.db.Model(&model.Request{}).
		Select("MIN("+r.yearMonth("date_postmarked")+") AS month").
		Where("action = ? AND date_postmarked >= ?", model.ActionFilled, since).
		Group("inmate_autoid")
	err := r.db.WithContext(ctx).Table("(?) AS firsts", first).
		Select("month, COUNT(*) AS value").
		Group("month").
		Order("month").
		Scan(&rows).Error
	return rows, err
}

func (r *metricsRepository) ShippedOunces(ctx context.Context, since time.Time) ([]MonthValue, error) {
	var rows []MonthValue
	ym := r.yearMonth("date_shipped")
	err := r.db.WithContext(ctx).Model(&model.Shipment{}).
		Select(ym+" AS month, SUM(weight) AS value").
		Where("date_shipped >= ?", since).
		Group(ym).
		Order("month").
		Scan(&rows).Error
	return rows, err
}
