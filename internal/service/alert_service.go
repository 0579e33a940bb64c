package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/repository"
	"github.com/d60-Lab/ibp/pkg/logger"
)

// AlertFields a new alert subscription.
type AlertFields struct {
	Requester string `form:"requester" json:"requester" binding:"required"`
	Email     string `form:"email" json:"email" binding:"omitempty,email"`
}

type AlertService interface {
	Create(ctx context.Context, inmateAutoID uint, fields AlertFields) (*model.Alert, error)
	Delete(ctx context.Context, autoID uint) error
	// NotifyAll notifies every alert of the inmate and returns them.
	NotifyAll(ctx context.Context, in *model.Inmate) ([]model.Alert, error)
}

type alertService struct {
	alerts   repository.AlertRepository
	inmates  repository.InmateRepository
	notifier AlertNotifier
	now      func() time.Time
}

func NewAlertService(alerts repository.AlertRepository, inmates repository.InmateRepository, notifier AlertNotifier) AlertService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &alertService{alerts: alerts, inmates: inmates, notifier: notifier, now: time.Now}
}

func (s *alertService) Create(ctx context.Context, inmateAutoID uint, f AlertFields) (*model.Alert, error) {
	if _, err := s.inmates.GetByAutoID(ctx, inmateAutoID); err != nil {
		return nil, notFound(err)
	}
	a := &model.Alert{
		InmateAutoID: inmateAutoID,
		Requester:    strings.TrimSpace(f.Requester),
		Email:        strings.TrimSpace(f.Email),
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *alertService) Delete(ctx context.Context, autoID uint) error {
	return notFound(s.alerts.Delete(ctx, autoID))
}

func (s *alertService) NotifyAll(ctx context.Context, in *model.Inmate) ([]model.Alert, error) {
	alerts, err := s.alerts.ListByInmate(ctx, in.AutoID)
	if err != nil || len(alerts) == 0 {
		return nil, err
	}

	now := s.now().UTC()
	sent := make([]uint, 0, len(alerts))
	for i, a := range alerts {
		if err := s.notifier.Notify(ctx, in, a); err != nil {
			logger.Warn("alert notification failed", zap.Uint("alert", a.AutoID), zap.Error(err))
			continue
		}
		sent = append(sent, a.AutoID)
		alerts[i].NotifiedAt = &now
	}
	if err := s.alerts.MarkNotified(ctx, sent, now); err != nil {
		return nil, err
	}
	return alerts, nil
}
