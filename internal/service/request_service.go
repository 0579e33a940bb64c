package service

import (
	"context"
	"time"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/repository"
	"github.com/d60-Lab/ibp/internal/schema"
	"github.com/d60-Lab/ibp/internal/warnings"
)

type RequestService interface {
	Create(ctx context.Context, inmateAutoID uint, postmarked time.Time, action string) (*model.Request, error)
	Get(ctx context.Context, autoID uint) (*model.Request, error)
	Update(ctx context.Context, autoID uint, fields schema.RequestFields) (*model.Request, error)
	Delete(ctx context.Context, autoID uint) error
	// Warnings lists the inmate warnings followed by the postmark warnings for
	// a prospective request.
	Warnings(ctx context.Context, inmateAutoID uint, postmarked time.Time) ([]string, error)
}

type requestService struct {
	requests repository.RequestRepository
	inmates  repository.InmateRepository
	th       warnings.Thresholds
	now      func() time.Time
}

func NewRequestService(requests repository.RequestRepository, inmates repository.InmateRepository, th warnings.Thresholds) RequestService {
	return &requestService{requests: requests, inmates: inmates, th: th, now: time.Now}
}

func (s *requestService) Create(ctx context.Context, inmateAutoID uint, postmarked time.Time, action string) (*model.Request, error) {
	if action == "" {
		action = model.ActionFilled
	}
	if !model.IsValidAction(action) {
		return nil, ErrInvalidAction
	}
	in, err := s.inmates.GetByAutoID(ctx, inmateAutoID)
	if err != nil {
		return nil, notFound(err)
	}
	req := &model.Request{
		InmateAutoID:   in.AutoID,
		DateProcessed:  model.Date(s.now()),
		DatePostmarked: model.Date(postmarked),
		Action:         action,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	req.Inmate = in
	return req, nil
}

func (s *requestService) Get(ctx context.Context, autoID uint) (*model.Request, error) {
	req, err := s.requests.GetByAutoID(ctx, autoID)
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

func (s *requestService) Update(ctx context.Context, autoID uint, fields schema.RequestFields) (*model.Request, error) {
	if !model.IsValidAction(fields.Action) {
		return nil, ErrInvalidAction
	}
	req, err := s.Get(ctx, autoID)
	if err != nil {
		return nil, err
	}
	req.DatePostmarked = model.Date(fields.DatePostmarked)
	req.Action = fields.Action
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) Delete(ctx context.Context, autoID uint) error {
	return notFound(s.requests.Delete(ctx, autoID))
}

func (s *requestService) Warnings(ctx context.Context, inmateAutoID uint, postmarked time.Time) ([]string, error) {
	in, err := s.inmates.GetByAutoID(ctx, inmateAutoID)
	if err != nil {
		return nil, notFound(err)
	}
	res := warnings.ForInmate(in, s.now(), s.th)
	return append(res, warnings.ForRequest(in.Requests, model.Date(postmarked), s.th)...), nil
}
