package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/repository"
	"github.com/d60-Lab/ibp/internal/schema"
	"github.com/d60-Lab/ibp/pkg/logger"
)

// ShipOrder is one outgoing package.
type ShipOrder struct {
	RequestIDs   []uint
	Weight       int // ounces
	Postage      int // cents
	TrackingCode string
	TrackingURL  string
}

// ShippingService 寄送：收件地址解析与发货登记
type ShippingService interface {
	// Destination refreshes the request's inmate and returns it with its unit.
	Destination(ctx context.Context, requestAutoID uint) (*model.Inmate, error)
	Ship(ctx context.Context, order ShipOrder) (*model.Shipment, error)
	GetShipment(ctx context.Context, autoID uint) (*model.Shipment, error)
	UpdateShipment(ctx context.Context, autoID uint, fields schema.ShipmentFields) (*model.Shipment, error)
}

type shippingService struct {
	requests  repository.RequestRepository
	shipments repository.ShipmentRepository
	inmates   InmateService
	now       func() time.Time
}

func NewShippingService(requests repository.RequestRepository, shipments repository.ShipmentRepository, inmates InmateService) ShippingService {
	return &shippingService{requests: requests, shipments: shipments, inmates: inmates, now: time.Now}
}

func (s *shippingService) Destination(ctx context.Context, requestAutoID uint) (*model.Inmate, error) {
	req, err := s.requests.GetByAutoID(ctx, requestAutoID)
	if err != nil {
		return nil, notFound(err)
	}
	if req.Inmate == nil {
		return nil, ErrNotFound
	}
	in, err := s.inmates.Refresh(ctx, req.Inmate)
	if err != nil {
		return nil, err
	}
	if in.Unit == nil {
		return in, fmt.Errorf("inmate %d: %w", in.AutoID, ErrUnassigned)
	}
	return in, nil
}

// Ship validates every request against freshly fetched inmate data before
// writing anything; the shipment, the refreshed inmates and the request links
// are then stored together.
func (s *shippingService) Ship(ctx context.Context, order ShipOrder) (*model.Shipment, error) {
	ids := dedupe(order.RequestIDs)
	if len(ids) == 0 {
		return nil, ErrNoRequests
	}

	found, err := s.requests.GetByAutoIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Request, len(found))
	for _, r := range found {
		byID[r.AutoID] = r
	}

	fresh := make(map[uint]*model.Inmate)
	var refreshed []*model.Inmate
	ordered := make([]model.Request, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok || r.Inmate == nil {
			return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
		}
		if r.ShipmentAutoID != nil {
			return nil, fmt.Errorf("%w: %d", ErrAlreadyShipped, id)
		}
		if _, seen := fresh[r.InmateAutoID]; !seen {
			in := s.inmates.Fetch(ctx, r.Inmate)
			fresh[r.InmateAutoID] = in
			if in != r.Inmate {
				refreshed = append(refreshed, in)
			}
		}
		ordered = append(ordered, r)
	}

	var unit *model.Unit
	for _, r := range ordered {
		if in := fresh[r.InmateAutoID]; in.Unit != nil {
			unit = in.Unit
			break
		}
	}
	for _, r := range ordered {
		in := fresh[r.InmateAutoID]
		if in.Unit == nil {
			return nil, fmt.Errorf("inmate for request %d: %w", r.AutoID, ErrUnassigned)
		}
		if in.Unit.AutoID != unit.AutoID {
			return nil, fmt.Errorf("%w '%s'", ErrUnitMismatch, unit.Name)
		}
	}

	shipment := &model.Shipment{
		DateShipped:  model.Date(s.now()),
		TrackingURL:  order.TrackingURL,
		TrackingCode: order.TrackingCode,
		Weight:       order.Weight,
		Postage:      order.Postage,
		UnitAutoID:   &unit.AutoID,
	}
	if err := s.shipments.Create(ctx, shipment, ids, refreshed); err != nil {
		if errors.Is(err, repository.ErrAlreadyShipped) {
			return nil, err
		}
		return nil, fmt.Errorf("create shipment: %w", err)
	}
	shipment.Unit = unit
	logger.Info("shipment created",
		zap.Uint("shipment", shipment.AutoID),
		zap.Int("ounces", shipment.Weight),
		zap.Int("requests", len(ids)),
	)
	return shipment, nil
}

func (s *shippingService) GetShipment(ctx context.Context, autoID uint) (*model.Shipment, error) {
	sh, err := s.shipments.GetByAutoID(ctx, autoID)
	if err != nil {
		return nil, notFound(err)
	}
	return sh, nil
}

func (s *shippingService) UpdateShipment(ctx context.Context, autoID uint, fields schema.ShipmentFields) (*model.Shipment, error) {
	sh, err := s.GetShipment(ctx, autoID)
	if err != nil {
		return nil, err
	}
	if fields.DateShipped != nil {
		sh.DateShipped = model.Date(*fields.DateShipped)
	}
	if fields.TrackingURL != "" {
		sh.TrackingURL = fields.TrackingURL
	}
	if fields.TrackingCode != "" {
		sh.TrackingCode = fields.TrackingCode
	}
	if fields.Weight != nil {
		sh.Weight = *fields.Weight
	}
	if fields.Postage != nil {
		sh.Postage = *fields.Postage
	}
	if err := s.shipments.Update(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
