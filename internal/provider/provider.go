// Package provider queries the external inmate-data sources, one per jurisdiction.
package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Record is an inmate as reported by a provider.
type Record struct {
	Jurisdiction    string    `json:"jurisdiction"`
	ID              string    `json:"id"` // may be formatted, e.g. "12345-678"
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Unit            string    `json:"unit"`
	Sex             string    `json:"sex"`
	Race            string    `json:"race"`
	Release         string    `json:"release"`
	URL             string    `json:"url"`
	DatetimeFetched time.Time `json:"datetime_fetched"`
}

// InmateID parses the numeric id, dropping separators.
func (r Record) InmateID() (int64, error) {
	id, err := strconv.ParseInt(strings.ReplaceAll(r.ID, "-", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid inmate id %q: %w", r.ID, err)
	}
	return id, nil
}

// Provider defines one inmate-data source.
type Provider interface {
	Jurisdiction() string
	QueryByName(ctx context.Context, firstName, lastName string) ([]Record, error)
	QueryByID(ctx context.Context, id int64) ([]Record, error)
}

// Set fans a query out to every provider and collects per-provider failures
// as warning strings instead of failing the whole query.
type Set []Provider

// Get returns the provider for a jurisdiction.
func (s Set) Get(jurisdiction string) (Provider, bool) {
	for _, p := range s {
		if p.Jurisdiction() == jurisdiction {
			return p, true
		}
	}
	return nil, false
}

func (s Set) QueryByName(ctx context.Context, firstName, lastName string) ([]Record, []string) {
	return s.fanout(ctx, func(ctx context.Context, p Provider) ([]Record, error) {
		return p.QueryByName(ctx, firstName, lastName)
	})
}

func (s Set) QueryByID(ctx context.Context, id int64) ([]Record, []string) {
	return s.fanout(ctx, func(ctx context.Context, p Provider) ([]Record, error) {
		return p.QueryByID(ctx, id)
	})
}

func (s Set) fanout(ctx context.Context, call func(context.Context, Provider) ([]Record, error)) ([]Record, []string) {
	results := make([][]Record, len(s))
	errs := make([]error, len(s))

	var wg sync.WaitGroup
	wg.Add(len(s))
	for i, p := range s {
		go func(i int, p Provider) {
			defer wg.Done()
			results[i], errs[i] = call(ctx, p)
		}(i, p)
	}
	wg.Wait()

	var records []Record
	var warnings []string
	for i, p := range s {
		if errs[i] != nil {
			warnings = append(warnings, fmt.Sprintf("%s inmate search failed: %v", p.Jurisdiction(), errs[i]))
			continue
		}
		records = append(records, results[i]...)
	}
	return records, warnings
}
