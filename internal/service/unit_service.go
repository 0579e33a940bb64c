package service

import (
	"context"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/repository"
)

// UnitFields are the editable unit attributes.
type UnitFields struct {
	Name           string `form:"name" binding:"required"`
	URL            string `form:"url" binding:"omitempty,url"`
	Street1        string `form:"street1" binding:"required"`
	Street2        string `form:"street2"`
	City           string `form:"city" binding:"required"`
	State          string `form:"state" binding:"required,max=3"`
	Zipcode        string `form:"zipcode" binding:"required,max=12"`
	ShippingMethod string `form:"shipping_method" binding:"omitempty,oneof=Box Individual"`
}

// FieldsOf pre-fills the edit form.
func FieldsOf(u *model.Unit) UnitFields {
	return UnitFields{
		Name: u.Name, URL: u.URL,
		Street1: u.Street1, Street2: u.Street2,
		City: u.City, State: u.State, Zipcode: u.Zipcode,
		ShippingMethod: u.ShippingMethod,
	}
}

type UnitService interface {
	List(ctx context.Context) ([]model.Unit, error)
	Get(ctx context.Context, autoID uint) (*model.Unit, error)
	Update(ctx context.Context, autoID uint, fields UnitFields) (*model.Unit, error)
	// AutoIDs maps unit names to their autoids.
	AutoIDs(ctx context.Context) (map[string]uint, error)
	Import(ctx context.Context, units []model.Unit) error
}

type unitService struct {
	units repository.UnitRepository
}

func NewUnitService(units repository.UnitRepository) UnitService {
	return &unitService{units: units}
}

func (s *unitService) List(ctx context.Context) ([]model.Unit, error) {
	return s.units.List(ctx)
}

func (s *unitService) Get(ctx context.Context, autoID uint) (*model.Unit, error) {
	u, err := s.units.GetByAutoID(ctx, autoID)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *unitService) Update(ctx context.Context, autoID uint, f UnitFields) (*model.Unit, error) {
	u, err := s.Get(ctx, autoID)
	if err != nil {
		return nil, err
	}
	u.Name, u.URL = f.Name, f.URL
	u.Street1, u.Street2 = f.Street1, f.Street2
	u.City, u.State, u.Zipcode = f.City, f.State, f.Zipcode
	u.ShippingMethod = f.ShippingMethod
	if err := s.units.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *unitService) AutoIDs(ctx context.Context) (map[string]uint, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make(map[string]uint, len(units))
	for _, u := range units {
		res[u.Name] = u.AutoID
	}
	return res, nil
}

func (s *unitService) Import(ctx context.Context, units []model.Unit) error {
	return s.units.UpsertByName(ctx, units)
}
