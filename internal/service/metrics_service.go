package service

import (
	"context"
	"time"

	"github.com/d60-Lab/ibp/internal/repository"
)

// CountSeries monthly counts, as consumed by the metrics page charts.
type CountSeries struct {
	Dates  []string `json:"dates"`
	Counts []int64  `json:"counts"`
}

// VolumeSeries monthly shipped weight in whole pounds.
type VolumeSeries struct {
	Dates  []string `json:"dates"`
	Pounds []int64  `json:"pounds"`
}

type MetricsService interface {
	RequestCounts(ctx context.Context) (CountSeries, error)
	NewRequestCounts(ctx context.Context) (CountSeries, error)
	ShippingVolume(ctx context.Context) (VolumeSeries, error)
}

type metricsService struct {
	repo   repository.MetricsRepository
	cutoff time.Time
}

func NewMetricsService(repo repository.MetricsRepository, cutoff time.Time) MetricsService {
	return &metricsService{repo: repo, cutoff: cutoff}
}

func (s *metricsService) RequestCounts(ctx context.Context) (CountSeries, error) {
	rows, err := s.repo.RequestCounts(ctx, s.cutoff)
	return counts(rows), err
}

func (s *metricsService) NewRequestCounts(ctx context.Context) (CountSeries, error) {
	rows, err := s.repo.NewRequestCounts(ctx, s.cutoff)
	return counts(rows), err
}

func (s *metricsService) ShippingVolume(ctx context.Context) (VolumeSeries, error) {
	rows, err := s.repo.ShippedOunces(ctx, s.cutoff)
	out := VolumeSeries{Dates: []string{}, Pounds: []int64{}}
	for _, r := range rows {
		out.Dates = append(out.Dates, r.Month)
		out.Pounds = append(out.Pounds, r.Value/16)
	}
	return out, err
}

func counts(rows []repository.MonthValue) CountSeries {
	out := CountSeries{Dates: []string{}, Counts: []int64{}}
	for _, r := range rows {
		out.Dates = append(out.Dates, r.Month)
		out.Counts = append(out.Counts, r.Value)
	}
	return out
}
