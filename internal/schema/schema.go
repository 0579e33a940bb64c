// Package schema converts persisted entities to and from JSON-compatible values.
//
// Loaders ignore unknown input fields and never accept read-only fields
// (indexes, timestamps). Dumpers embed nested collections and compute the
// inmate warnings at dump time.
package schema

import (
	"time"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/warnings"
)

// Unit is the nested unit projection (name and url only).
type Unit struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// UnitListItem is one entry of the unit listing.
type UnitListItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Lookup struct {
	Datetime time.Time `json:"datetime"`
}

type Comment struct {
	Index    uint      `json:"index"`
	Datetime time.Time `json:"datetime"`
	Author   string    `json:"author"`
	Body     string    `json:"body"`
}

type Request struct {
	Index          uint   `json:"index"`
	DatePostmarked Date   `json:"date_postmarked"`
	Action         string `json:"action"`
}

type Inmate struct {
	Jurisdiction    string    `json:"jurisdiction"`
	ID              int64     `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Sex             string    `json:"sex"`
	Race            string    `json:"race"`
	URL             string    `json:"url"`
	Release         string    `json:"release"`
	ReleaseWarning  string    `json:"release_warning"`
	DatetimeFetched string    `json:"datetime_fetched"`
	EntryAgeWarning string    `json:"entry_age_warning"`
	Unit            *Unit     `json:"unit"`
	Lookups         []Lookup  `json:"lookups"`
	Comments        []Comment `json:"comments"`
	Requests        []Request `json:"requests"`
}

// InmateListItem is the search-result projection: no warnings, no children.
type InmateListItem struct {
	Jurisdiction string        `json:"jurisdiction"`
	ID           int64         `json:"id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Unit         *UnitNameOnly `json:"unit"`
}

type UnitNameOnly struct {
	Name string `json:"name"`
}

type Shipment struct {
	DateShipped  Date   `json:"date_shipped"`
	TrackingURL  string `json:"tracking_url"`
	TrackingCode string `json:"tracking_code"`
	Weight       int    `json:"weight"`
	Postage      int    `json:"postage"`
}

// Dumper serializes entities; warnings need the clock and thresholds.
type Dumper struct {
	Thresholds warnings.Thresholds
	Now        func() time.Time
}

func (d Dumper) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func DumpLookup(l model.Lookup) Lookup { return Lookup{Datetime: l.Datetime} }

func DumpComment(c model.Comment) Comment {
	return Comment{Index: c.AutoID, Datetime: c.Datetime, Author: c.Author, Body: c.Body}
}

func DumpRequest(r model.Request) Request {
	return Request{Index: r.AutoID, DatePostmarked: Date(r.DatePostmarked), Action: r.Action}
}

func DumpShipment(s model.Shipment) Shipment {
	return Shipment{
		DateShipped:  Date(s.DateShipped),
		TrackingURL:  s.TrackingURL,
		TrackingCode: s.TrackingCode,
		Weight:       s.Weight,
		Postage:      s.Postage,
	}
}

func DumpUnits(units []model.Unit) []UnitListItem {
	out := make([]UnitListItem, 0, len(units))
	for _, u := range units {
		out = append(out, UnitListItem{ID: u.AutoID, Name: u.Name})
	}
	return out
}

// Inmate dumps a full inmate with embedded children and computed warnings.
func (d Dumper) Inmate(in *model.Inmate) Inmate {
	now := d.now()
	out := Inmate{
		Jurisdiction:    in.Jurisdiction,
		ID:              in.ID,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Sex:             in.Sex,
		Race:            in.Race,
		URL:             in.URL,
		Release:         in.Release,
		ReleaseWarning:  warnings.Release(in, now, d.Thresholds),
		EntryAgeWarning: warnings.EntryAge(in, now, d.Thresholds),
		Lookups:         make([]Lookup, 0, len(in.Lookups)),
		Comments:        make([]Comment, 0, len(in.Comments)),
		Requests:        make([]Request, 0, len(in.Requests)),
	}
	if in.DatetimeFetched != nil {
		out.DatetimeFetched = in.DatetimeFetched.Format("2006-01-02 15:04:05")
	}
	if in.Unit != nil {
		out.Unit = &Unit{Name: in.Unit.Name, URL: in.Unit.URL}
	}
	for _, l := range in.Lookups {
		out.Lookups = append(out.Lookups, DumpLookup(l))
	}
	for _, c := range in.Comments {
		out.Comments = append(out.Comments, DumpComment(c))
	}
	for _, r := range in.Requests {
		out.Requests = append(out.Requests, DumpRequest(r))
	}
	return out
}

// Inmates dumps the listing projection.
func Inmates(list []model.Inmate) []InmateListItem {
	out := make([]InmateListItem, 0, len(list))
	for _, in := range list {
		item := InmateListItem{
			Jurisdiction: in.Jurisdiction,
			ID:           in.ID,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
		}
		if in.Unit != nil {
			item.Unit = &UnitNameOnly{Name: in.Unit.Name}
		}
		out = append(out, item)
	}
	return out
}
