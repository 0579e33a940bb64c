package warnings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/ibp/internal/model"
)

var th = Thresholds{
	InmatesCacheTTL:      24 * time.Hour,
	MinReleaseTimedelta:  30 * day,
	MinPostmarkTimedelta: 90 * day,
}

var now = time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

func texasInmate() *model.Inmate {
	fetched := now.Add(-time.Hour)
	return &model.Inmate{Jurisdiction: "Texas", ID: 1234567, DatetimeFetched: &fetched}
}

func TestParseRelease(t *testing.T) {
	cases := map[string]bool{
		"2024-04-01":    true,
		"04/01/2024":    true,
		"4/1/2024":      true,
		"2024/04/01":    true,
		"LIFE SENTENCE": false,
		"":              false,
	}
	for in, ok := range cases {
		_, got := ParseRelease(in)
		assert.Equal(t, ok, got, in)
	}
}

func TestRelease(t *testing.T) {
	in := texasInmate()

	in.Release = "2024-03-20"
	assert.Equal(t, "Texas inmate #01234567 is 10 days from release.", Release(in, now, th))

	in.Release = "2024-03-10"
	assert.Equal(t, "Texas inmate #01234567 is marked as released", Release(in, now, th))

	in.Release = "2030-01-01"
	assert.Empty(t, Release(in, now, th))

	in.Release = "PAROLE IN ABSENTIA"
	assert.Empty(t, Release(in, now, th))
}

func TestEntryAge(t *testing.T) {
	in := texasInmate()
	assert.Empty(t, EntryAge(in, now, th))

	old := now.Add(-72 * time.Hour)
	in.DatetimeFetched = &old
	assert.Equal(t, "Data entry for Texas inmate #01234567 is 3 days old.", EntryAge(in, now, th))

	in.DatetimeFetched = nil
	assert.Equal(t, "Data entry for Texas inmate #01234567 has never been verified.", EntryAge(in, now, th))
}

func TestForInmate_Order(t *testing.T) {
	in := texasInmate()
	in.DatetimeFetched = nil
	in.Release = "2024-03-11"

	got := ForInmate(in, now, th)
	assert.Len(t, got, 2)
	assert.Contains(t, got[0], "never been verified")
	assert.Contains(t, got[1], "1 days from release")
}

func TestForRequest(t *testing.T) {
	date := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	requests := []model.Request{
		{Action: model.ActionTossed, DatePostmarked: date("2024-03-01")},
		{Action: model.ActionFilled, DatePostmarked: date("2024-01-01")},
		{Action: model.ActionFilled, DatePostmarked: date("2023-06-01")},
	}

	assert.Nil(t, ForRequest(nil, date("2024-01-01"), th))
	assert.Equal(t, []string{"There is a request with a postmark after this one."},
		ForRequest(requests, date("2023-12-31"), th))
	assert.Equal(t, []string{"No time has transpired since the last postmark."},
		ForRequest(requests, date("2024-01-01"), th))
	assert.Equal(t, []string{"Only 31 days since last postmark."},
		ForRequest(requests, date("2024-02-01"), th))
	assert.Nil(t, ForRequest(requests, date("2024-06-01"), th))
}
