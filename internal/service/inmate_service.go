package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/provider"
	"github.com/d60-Lab/ibp/internal/repository"
	"github.com/d60-Lab/ibp/pkg/logger"
)

// InmateService 在押人员查询、查看与刷新
type InmateService interface {
	// SearchByName queries every provider, stores the results and returns the
	// local matches; provider failures come back as warnings.
	SearchByName(ctx context.Context, firstName, lastName string) ([]model.Inmate, []string, error)
	SearchByID(ctx context.Context, id int64) ([]model.Inmate, []string, error)
	// View records a lookup and returns the inmate with its children.
	View(ctx context.Context, autoID uint) (*model.Inmate, error)
	Get(ctx context.Context, autoID uint) (*model.Inmate, error)
	// GetByKey returns a stored inmate, asking its provider when it is not stored yet.
	GetByKey(ctx context.Context, jurisdiction string, id int64) (*model.Inmate, []string, error)
	// Refresh re-fetches the inmate and stores the result.
	Refresh(ctx context.Context, in *model.Inmate) (*model.Inmate, error)
	// Fetch re-fetches the inmate without storing anything.
	Fetch(ctx context.Context, in *model.Inmate) *model.Inmate
}

type inmateService struct {
	inmates   repository.InmateRepository
	units     repository.UnitRepository
	providers provider.Set
	now       func() time.Time
}

func NewInmateService(inmates repository.InmateRepository, units repository.UnitRepository, providers provider.Set) InmateService {
	return &inmateService{inmates: inmates, units: units, providers: providers, now: time.Now}
}

func (s *inmateService) SearchByName(ctx context.Context, firstName, lastName string) ([]model.Inmate, []string, error) {
	records, warns := s.providers.QueryByName(ctx, firstName, lastName)
	if err := s.store(ctx, records); err != nil {
		return nil, warns, err
	}
	found, err := s.inmates.SearchByName(ctx, firstName, lastName)
	return found, warns, err
}

func (s *inmateService) SearchByID(ctx context.Context, id int64) ([]model.Inmate, []string, error) {
	records, warns := s.providers.QueryByID(ctx, id)
	if err := s.store(ctx, records); err != nil {
		return nil, warns, err
	}
	found, err := s.inmates.ListByID(ctx, id)
	return found, warns, err
}

func (s *inmateService) View(ctx context.Context, autoID uint) (*model.Inmate, error) {
	if err := s.inmates.RecordLookup(ctx, autoID, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.Get(ctx, autoID)
}

func (s *inmateService) Get(ctx context.Context, autoID uint) (*model.Inmate, error) {
	in, err := s.inmates.GetByAutoID(ctx, autoID)
	if err != nil {
		return nil, notFound(err)
	}
	return in, nil
}

func (s *inmateService) GetByKey(ctx context.Context, jurisdiction string, id int64) (*model.Inmate, []string, error) {
	in, err := s.inmates.GetByKey(ctx, jurisdiction, id)
	if err == nil {
		return in, nil, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, nil, err
	}

	p, ok := s.providers.Get(jurisdiction)
	if !ok {
		return nil, nil, ErrNotFound
	}
	records, warns := provider.Set{p}.QueryByID(ctx, id)
	if err := s.store(ctx, records); err != nil {
		return nil, warns, err
	}
	in, err = s.inmates.GetByKey(ctx, jurisdiction, id)
	if err != nil {
		return nil, warns, notFound(err)
	}
	return in, warns, nil
}

func (s *inmateService) Refresh(ctx context.Context, in *model.Inmate) (*model.Inmate, error) {
	fresh := s.Fetch(ctx, in)
	if fresh == in {
		return in, nil
	}
	if err := s.inmates.Upsert(ctx, []*model.Inmate{fresh}); err != nil {
		return nil, fmt.Errorf("store refreshed inmate: %w", err)
	}
	return fresh, nil
}

// Fetch returns in itself when the provider cannot be reached or no longer
// reports the inmate.
func (s *inmateService) Fetch(ctx context.Context, in *model.Inmate) *model.Inmate {
	p, ok := s.providers.Get(in.Jurisdiction)
	if !ok {
		logger.Warn("inmate refresh skipped", zap.String("jurisdiction", in.Jurisdiction), zap.Error(ErrNoProvider))
		return in
	}
	records, err := p.QueryByID(provider.WithoutCache(ctx), in.ID)
	if err != nil {
		logger.Warn("inmate refresh failed",
			zap.String("jurisdiction", in.Jurisdiction),
			zap.Int64("id", in.ID),
			zap.Error(err),
		)
		return in
	}
	for _, rec := range records {
		id, err := rec.InmateID()
		if err != nil || id != in.ID {
			continue
		}
		fresh := *in
		s.apply(ctx, &fresh, rec)
		return &fresh
	}
	logger.Warn("inmate no longer reported by provider",
		zap.String("jurisdiction", in.Jurisdiction), zap.Int64("id", in.ID))
	return in
}

func (s *inmateService) apply(ctx context.Context, in *model.Inmate, rec provider.Record) {
	in.FirstName = rec.FirstName
	in.LastName = rec.LastName
	in.Sex = rec.Sex
	in.Race = rec.Race
	in.URL = rec.URL
	in.Release = rec.Release
	fetched := rec.DatetimeFetched
	if fetched.IsZero() {
		fetched = s.now()
	}
	fetched = fetched.UTC()
	in.DatetimeFetched = &fetched

	in.Unit, in.UnitAutoID = nil, nil
	if rec.Unit == "" {
		return
	}
	unit, err := s.units.GetByName(ctx, rec.Unit)
	if err != nil {
		if notFound(err) != ErrNotFound {
			logger.Warn("unit lookup failed", zap.String("unit", rec.Unit), zap.Error(err))
		}
		return
	}
	in.Unit, in.UnitAutoID = unit, &unit.AutoID
}

// store upserts provider records by natural key.
func (s *inmateService) store(ctx context.Context, records []provider.Record) error {
	if len(records) == 0 {
		return nil
	}
	inmates := make([]*model.Inmate, 0, len(records))
	for _, rec := range records {
		id, err := rec.InmateID()
		if err != nil {
			logger.Warn("skipping provider record", zap.String("jurisdiction", rec.Jurisdiction), zap.Error(err))
			continue
		}
		in := &model.Inmate{Jurisdiction: rec.Jurisdiction, ID: id}
		s.apply(ctx, in, rec)
		in.Unit = nil
		inmates = append(inmates, in)
	}
	if err := s.inmates.Upsert(ctx, inmates); err != nil {
		return fmt.Errorf("store provider results: %w", err)
	}
	return nil
}
