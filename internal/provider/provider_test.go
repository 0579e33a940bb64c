package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTexas(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/inmates":
			assert.Equal(t, "JOHN", r.URL.Query().Get("first_name"))
			_ = json.NewEncoder(w).Encode([]Record{{ID: "0123-4567", FirstName: "JOHN", LastName: "DOE", Unit: "Wynne"}})
		case "/inmates/1234567":
			_ = json.NewEncoder(w).Encode([]Record{{ID: "01234567", FirstName: "JOHN", LastName: "DOE"}})
		case "/inmates/500":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProvider(t *testing.T) {
	var hits atomic.Int64
	srv := fakeTexas(t, &hits)
	p := NewHTTPProvider("Texas", srv.URL, time.Second)
	ctx := context.Background()

	recs, err := p.QueryByName(ctx, "JOHN", "DOE")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Texas", recs[0].Jurisdiction)
	id, err := recs[0].InmateID()
	require.NoError(t, err)
	assert.Equal(t, int64(1234567), id)

	recs, err = p.QueryByID(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = p.QueryByID(ctx, 500)
	assert.ErrorContains(t, err, "unexpected status 500")
}

type stubProvider struct {
	jurisdiction string
	records      []Record
	err          error
}

func (s stubProvider) Jurisdiction() string { return s.jurisdiction }
func (s stubProvider) QueryByName(context.Context, string, string) ([]Record, error) {
	return s.records, s.err
}
func (s stubProvider) QueryByID(context.Context, int64) ([]Record, error) { return s.records, s.err }

func TestSet_PartialFailure(t *testing.T) {
	set := Set{
		stubProvider{jurisdiction: "Texas", records: []Record{{ID: "1", Jurisdiction: "Texas"}}},
		stubProvider{jurisdiction: "Federal", err: errors.New("timeout")},
	}

	recs, warns := set.QueryByName(context.Background(), "a", "b")
	assert.Len(t, recs, 1)
	assert.Equal(t, []string{"Federal inmate search failed: timeout"}, warns)

	p, ok := set.Get("Federal")
	require.True(t, ok)
	assert.Equal(t, "Federal", p.Jurisdiction())
	_, ok = set.Get("Ohio")
	assert.False(t, ok)
}

func TestCachedProvider(t *testing.T) {
	var hits atomic.Int64
	srv := fakeTexas(t, &hits)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p := NewCachedProvider(NewHTTPProvider("Texas", srv.URL, time.Second), client, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		recs, err := p.QueryByName(ctx, "JOHN", "DOE")
		require.NoError(t, err)
		require.Len(t, recs, 1)
	}
	assert.Equal(t, int64(1), hits.Load())

	_, err := p.QueryByName(WithoutCache(ctx), "JOHN", "DOE")
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())

	_, err = p.QueryByID(ctx, 500)
	require.Error(t, err)
	_, err = p.QueryByID(ctx, 500)
	require.Error(t, err)
	assert.Equal(t, int64(4), hits.Load(), "errors must not be cached")

	mr.FastForward(2 * time.Minute)
	_, err = p.QueryByName(ctx, "JOHN", "DOE")
	require.NoError(t, err)
	assert.Equal(t, int64(5), hits.Load())
}

func TestCachedProvider_KeepsFetchTime(t *testing.T) {
	var hits atomic.Int64
	srv := fakeTexas(t, &hits)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p := NewCachedProvider(NewHTTPProvider("Texas", srv.URL, time.Second), client, time.Hour)
	asked := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return asked }
	ctx := context.Background()

	recs, err := p.QueryByName(ctx, "JOHN", "DOE")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, asked.Equal(recs[0].DatetimeFetched))

	p.now = func() time.Time { return asked.Add(30 * time.Minute) }
	recs, err = p.QueryByName(ctx, "JOHN", "DOE")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), hits.Load())
	assert.True(t, asked.Equal(recs[0].DatetimeFetched), recs[0].DatetimeFetched)
}
