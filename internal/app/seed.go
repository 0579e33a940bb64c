package app

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/d60-Lab/ibp/internal/model"
)

// unitSeed is one entry of the units seed file.
type unitSeed struct {
	Name           string `yaml:"name"`
	Street1        string `yaml:"street1"`
	Street2        string `yaml:"street2"`
	City           string `yaml:"city"`
	State          string `yaml:"state"`
	Zipcode        string `yaml:"zipcode"`
	URL            string `yaml:"url"`
	Jurisdiction   string `yaml:"jurisdiction"`
	ShippingMethod string `yaml:"shipping_method"`
}

type seedFile struct {
	Units []unitSeed `yaml:"units"`
}

// ParseUnits reads a units seed document:
//
//	units:
//	  - name: Huntsville
//	    street1: 815 12th St
//	    city: Huntsville
//	    state: TX
//	    zipcode: "77348"
//	    shipping_method: Box
func ParseUnits(r io.Reader) ([]model.Unit, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode units: %w", err)
	}

	seen := make(map[string]bool, len(f.Units))
	units := make([]model.Unit, 0, len(f.Units))
	for i, s := range f.Units {
		name := strings.TrimSpace(s.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("unit %d: name is required", i+1)
		case s.Street1 == "" || s.City == "" || s.State == "" || s.Zipcode == "":
			return nil, fmt.Errorf("unit %q: street1, city, state and zipcode are required", name)
		case len(s.State) > 3:
			return nil, fmt.Errorf("unit %q: state %q is too long", name, s.State)
		case s.ShippingMethod != "" && s.ShippingMethod != model.ShippingBox && s.ShippingMethod != model.ShippingIndividual:
			return nil, fmt.Errorf("unit %q: unknown shipping method %q", name, s.ShippingMethod)
		case seen[name]:
			return nil, fmt.Errorf("unit %q listed twice", name)
		}
		seen[name] = true
		units = append(units, model.Unit{
			Name:           name,
			Street1:        s.Street1,
			Street2:        s.Street2,
			City:           s.City,
			State:          s.State,
			Zipcode:        s.Zipcode,
			URL:            s.URL,
			Jurisdiction:   s.Jurisdiction,
			ShippingMethod: s.ShippingMethod,
		})
	}
	return units, nil
}
