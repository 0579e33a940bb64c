// Package warnings derives volunteer-facing warnings from inmate and request state.
// Nothing here is stored; every warning is a function of the entity and the clock.
package warnings

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/model"
)

const day = 24 * time.Hour

// Thresholds 警告阈值
type Thresholds struct {
	InmatesCacheTTL      time.Duration
	MinReleaseTimedelta  time.Duration
	MinPostmarkTimedelta time.Duration
}

// FromConfig converts the hour/day based config values.
func FromConfig(c config.WarningsConfig) Thresholds {
	return Thresholds{
		InmatesCacheTTL:      time.Duration(c.InmatesCacheTTL) * time.Hour,
		MinReleaseTimedelta:  time.Duration(c.MinReleaseTimedelta) * day,
		MinPostmarkTimedelta: time.Duration(c.MinPostmarkTimedelta) * day,
	}
}

// MinPostmarkDays is the postmark threshold in whole days.
func (t Thresholds) MinPostmarkDays() int { return int(t.MinPostmarkTimedelta / day) }

var releaseLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// ParseRelease parses a provider release string. Free-text values such as
// "LIFE SENTENCE" or "NOT AVAILABLE" are reported as not ok.
func ParseRelease(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range releaseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Date(t), true
		}
	}
	return time.Time{}, false
}

func label(in *model.Inmate) string {
	return fmt.Sprintf("%s inmate #%08d", in.Jurisdiction, in.ID)
}

// EntryAge warns when the record was never fetched or is older than the cache TTL.
func EntryAge(in *model.Inmate, now time.Time, th Thresholds) string {
	if in.DatetimeFetched == nil || in.DatetimeFetched.IsZero() {
		return fmt.Sprintf("Data entry for %s has never been verified.", label(in))
	}
	age := now.Sub(*in.DatetimeFetched)
	if age > th.InmatesCacheTTL {
		return fmt.Sprintf("Data entry for %s is %d days old.", label(in), int(age/day))
	}
	return ""
}

// Release warns when the inmate is released or within the release threshold.
func Release(in *model.Inmate, now time.Time, th Thresholds) string {
	release, ok := ParseRelease(in.Release)
	if !ok {
		return ""
	}
	toRelease := release.Sub(model.Date(now))
	switch {
	case toRelease <= 0:
		return fmt.Sprintf("%s is marked as released", label(in))
	case toRelease <= th.MinReleaseTimedelta:
		return fmt.Sprintf("%s is %d days from release.", label(in), int(toRelease/day))
	}
	return ""
}

// ForInmate collects the inmate-level warnings, entry age first.
func ForInmate(in *model.Inmate, now time.Time, th Thresholds) []string {
	var out []string
	if w := EntryAge(in, now, th); w != "" {
		out = append(out, w)
	}
	if w := Release(in, now, th); w != "" {
		out = append(out, w)
	}
	return out
}

// ForRequest compares a candidate postmark date with the most recent filled request.
func ForRequest(requests []model.Request, postmark time.Time, th Thresholds) []string {
	filled := make([]model.Request, 0, len(requests))
	for _, r := range requests {
		if r.Action == model.ActionFilled {
			filled = append(filled, r)
		}
	}
	if len(filled) == 0 {
		return nil
	}
	sort.SliceStable(filled, func(i, j int) bool {
		return filled[i].DatePostmarked.After(filled[j].DatePostmarked)
	})
	last := model.Date(filled[0].DatePostmarked)

	delta := model.Date(postmark).Sub(last)
	days := int(delta / day)
	switch {
	case delta < 0:
		return []string{"There is a request with a postmark after this one."}
	case days == 0:
		return []string{"No time has transpired since the last postmark."}
	case delta < th.MinPostmarkTimedelta:
		return []string{fmt.Sprintf("Only %d days since last postmark.", days)}
	}
	return nil
}
