package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/provider"
	"github.com/d60-Lab/ibp/internal/repository"
	"github.com/d60-Lab/ibp/internal/schema"
	"github.com/d60-Lab/ibp/internal/warnings"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// stubProvider serves fixed records for one jurisdiction.
type stubProvider struct {
	jurisdiction string
	records      []provider.Record
	err          error
}

func (p *stubProvider) Jurisdiction() string { return p.jurisdiction }

func (p *stubProvider) QueryByName(_ context.Context, first, last string) ([]provider.Record, error) {
	return p.records, p.err
}

func (p *stubProvider) QueryByID(_ context.Context, id int64) ([]provider.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []provider.Record
	for _, r := range p.records {
		if rid, _ := r.InmateID(); rid == id {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	db       *gorm.DB
	texas    *stubProvider
	federal  *stubProvider
	inmates  InmateService
	requests RequestService
	shipping ShippingService
	alpha    *model.Unit
	beta     *model.Unit
}

func newFixture(t *testing.T) *fixture {
	db := setupDB(t)
	f := &fixture{
		db:      db,
		texas:   &stubProvider{jurisdiction: model.JurisdictionTexas},
		federal: &stubProvider{jurisdiction: model.JurisdictionFederal},
	}
	f.alpha = &model.Unit{Name: "Alpha", Street1: "1 Main", City: "Huntsville", State: "TX", Zipcode: "77340"}
	f.beta = &model.Unit{Name: "Beta", Street1: "2 Elm", City: "Tyler", State: "TX", Zipcode: "75701"}
	require.NoError(t, db.Create(f.alpha).Error)
	require.NoError(t, db.Create(f.beta).Error)

	inmateRepo := repository.NewInmateRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	f.inmates = NewInmateService(inmateRepo, repository.NewUnitRepository(db), provider.Set{f.texas, f.federal})
	f.requests = NewRequestService(requestRepo, inmateRepo, warnings.FromConfig(config.WarningsConfig{
		InmatesCacheTTL: 24, MinReleaseTimedelta: 30, MinPostmarkTimedelta: 90,
	}))
	f.shipping = NewShippingService(requestRepo, repository.NewShipmentRepository(db), f.inmates)
	return f
}

func (f *fixture) inmate(t *testing.T, id int64, unit *model.Unit) *model.Inmate {
	t.Helper()
	in := &model.Inmate{Jurisdiction: model.JurisdictionTexas, ID: id, FirstName: "John", LastName: "Doe"}
	if unit != nil {
		in.UnitAutoID = &unit.AutoID
	}
	require.NoError(t, f.db.Omit("Unit").Create(in).Error)
	return in
}

func (f *fixture) request(t *testing.T, in *model.Inmate) uint {
	t.Helper()
	r, err := f.requests.Create(context.Background(), in.AutoID, time.Now(), "")
	require.NoError(t, err)
	return r.AutoID
}

func (f *fixture) shipments(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.db.Model(&model.Shipment{}).Count(&n).Error)
	return n
}

func TestInmateService_SearchByName(t *testing.T) {
	f := newFixture(t)
	f.texas.records = []provider.Record{
		{Jurisdiction: model.JurisdictionTexas, ID: "01234567", FirstName: "JOHN", LastName: "DOE", Unit: "Alpha", Release: "2030-01-01"},
	}
	f.federal.err = errors.New("timeout")

	found, warns, err := f.inmates.SearchByName(context.Background(), "john", "doe")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.EqualValues(t, 1234567, found[0].ID)
	require.NotNil(t, found[0].Unit)
	assert.Equal(t, "Alpha", found[0].Unit.Name)
	assert.Equal(t, []string{"Federal inmate search failed: timeout"}, warns)

	// a second search updates in place
	f.texas.records[0].Unit = "Beta"
	found, _, err = f.inmates.SearchByName(context.Background(), "john", "doe")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Beta", found[0].Unit.Name)
}

func TestInmateService_ViewKeepsThreeLookups(t *testing.T) {
	f := newFixture(t)
	in := f.inmate(t, 1, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.db.Create(&model.Lookup{InmateAutoID: in.AutoID, Datetime: time.Now().Add(-time.Duration(i+1) * time.Hour)}).Error)
	}

	got, err := f.inmates.View(context.Background(), in.AutoID)
	require.NoError(t, err)
	assert.Len(t, got.Lookups, 3)

	_, err = f.inmates.View(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInmateService_GetByKeyFetchesMissing(t *testing.T) {
	f := newFixture(t)
	f.federal.records = []provider.Record{{Jurisdiction: model.JurisdictionFederal, ID: "12345-678", FirstName: "Jane", LastName: "Roe"}}

	in, _, err := f.inmates.GetByKey(context.Background(), model.JurisdictionFederal, 12345678)
	require.NoError(t, err)
	assert.Equal(t, "Jane", in.FirstName)
	require.NotNil(t, in.DatetimeFetched)

	_, _, err = f.inmates.GetByKey(context.Background(), model.JurisdictionFederal, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestService_Create(t *testing.T) {
	f := newFixture(t)
	in := f.inmate(t, 1, nil)
	ctx := context.Background()

	r, err := f.requests.Create(ctx, in.AutoID, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	assert.Equal(t, model.ActionFilled, r.Action)

	_, err = f.requests.Create(ctx, in.AutoID, time.Now(), "Lost")
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = f.requests.Create(ctx, 999, time.Now(), "")
	assert.ErrorIs(t, err, ErrNotFound)

	warns, err := f.requests.Warnings(ctx, in.AutoID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, warns, "Only 29 days since last postmark.")

	upd, err := f.requests.Update(ctx, r.AutoID, schema.RequestFields{DatePostmarked: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Action: model.ActionTossed})
	require.NoError(t, err)
	assert.Equal(t, model.ActionTossed, upd.Action)

	require.NoError(t, f.requests.Delete(ctx, r.AutoID))
	assert.ErrorIs(t, f.requests.Delete(ctx, r.AutoID), ErrNotFound)
}

func TestShippingService_Ship(t *testing.T) {
	ctx := context.Background()

	t.Run("unassigned inmate", func(t *testing.T) {
		f := newFixture(t)
		id := f.request(t, f.inmate(t, 1, nil))
		_, err := f.shipping.Ship(ctx, ShipOrder{RequestIDs: []uint{id}, Weight: 10})
		assert.ErrorIs(t, err, ErrUnassigned)
		assert.Zero(t, f.shipments(t))
	})

	t.Run("mixed units", func(t *testing.T) {
		f := newFixture(t)
		a := f.request(t, f.inmate(t, 1, f.alpha))
		b := f.request(t, f.inmate(t, 2, f.beta))
		_, err := f.shipping.Ship(ctx, ShipOrder{RequestIDs: []uint{a, b}})
		assert.ErrorIs(t, err, ErrUnitMismatch)
		assert.Contains(t, err.Error(), "'Alpha'")
		assert.Zero(t, f.shipments(t))
	})

	t.Run("provider moved the inmate", func(t *testing.T) {
		f := newFixture(t)
		a := f.request(t, f.inmate(t, 1, f.alpha))
		b := f.request(t, f.inmate(t, 2, f.alpha))
		f.texas.records = []provider.Record{{Jurisdiction: model.JurisdictionTexas, ID: "2", FirstName: "JOHN", LastName: "DOE", Unit: "Beta"}}

		_, err := f.shipping.Ship(ctx, ShipOrder{RequestIDs: []uint{a, b}})
		assert.ErrorIs(t, err, ErrUnitMismatch)
		assert.Zero(t, f.shipments(t))

		// the refreshed unit was not written
		var in model.Inmate
		require.NoError(t, f.db.Where("id = ?", 2).First(&in).Error)
		require.NotNil(t, in.UnitAutoID)
		assert.Equal(t, f.alpha.AutoID, *in.UnitAutoID)
	})

	t.Run("missing request", func(t *testing.T) {
		f := newFixture(t)
		a := f.request(t, f.inmate(t, 1, f.alpha))
		_, err := f.shipping.Ship(ctx, ShipOrder{RequestIDs: []uint{a, 999}})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("homogeneous", func(t *testing.T) {
		f := newFixture(t)
		in := f.inmate(t, 1, f.alpha)
		a := f.request(t, in)
		b := f.request(t, f.inmate(t, 2, f.alpha))
		f.texas.records = []provider.Record{{Jurisdiction: model.JurisdictionTexas, ID: "1", FirstName: "JOHN", LastName: "DOE", Unit: "Alpha", Release: "2031-05-05"}}

		s, err := f.shipping.Ship(ctx, ShipOrder{RequestIDs: []uint{a, b, a}, Weight: 33, Postage: 512, TrackingCode: "9400"})
		require.NoError(t, err)
		assert.Equal(t, 1, int(f.shipments(t)))
		assert.Equal(t, f.alpha.AutoID, *s.UnitAutoID)

		got, err := f.shipping.GetShipment(ctx, s.AutoID)
		require.NoError(t, err)
		assert.Len(t, got.Requests, 2)
		assert.Equal(t, 33, got.Weight)
		assert.Equal(t, 512, got.Postage)
		assert.Equal(t, "9400", got.TrackingCode)

		var stored model.Inmate
		require.NoError(t, f.db.First(&stored, in.AutoID).Error)
		assert.Equal(t, "2031-05-05", stored.Release)

		_, err = f.shipping.Ship(ctx, ShipOrder{RequestIDs: []uint{a}})
		assert.ErrorIs(t, err, ErrAlreadyShipped)

		w := 40
		got, err = f.shipping.UpdateShipment(ctx, s.AutoID, schema.ShipmentFields{Weight: &w, TrackingURL: "https://t.example/9400"})
		require.NoError(t, err)
		assert.Equal(t, 40, got.Weight)
		assert.Equal(t, "9400", got.TrackingCode)
	})
}

func TestShippingService_Destination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, f.inmate(t, 1, nil))

	_, err := f.shipping.Destination(ctx, id)
	assert.ErrorIs(t, err, ErrUnassigned)

	f.texas.records = []provider.Record{{Jurisdiction: model.JurisdictionTexas, ID: "1", FirstName: "JOHN", LastName: "DOE", Unit: "Beta"}}
	in, err := f.shipping.Destination(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Beta", in.Unit.Name)

	_, err = f.shipping.Destination(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

type recordingNotifier struct{ sent []uint }

func (n *recordingNotifier) Notify(_ context.Context, _ *model.Inmate, a model.Alert) error {
	n.sent = append(n.sent, a.AutoID)
	return nil
}

func TestAlertService_NotifyAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := f.inmate(t, 1, nil)
	n := &recordingNotifier{}
	svc := NewAlertService(repository.NewAlertRepository(f.db), repository.NewInmateRepository(f.db), n)

	alerts, err := svc.NotifyAll(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	a, err := svc.Create(ctx, in.AutoID, AlertFields{Requester: " Mom ", Email: "mom@example.org"})
	require.NoError(t, err)
	assert.Equal(t, "Mom", a.Requester)

	alerts, err = svc.NotifyAll(ctx, in)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, []uint{a.AutoID}, n.sent)
	assert.NotNil(t, alerts[0].NotifiedAt)

	require.NoError(t, svc.Delete(ctx, a.AutoID))
	assert.ErrorIs(t, svc.Delete(ctx, a.AutoID), ErrNotFound)
}

func TestRedisNotifier(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, "ibp:alerts")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n := NewRedisNotifier(rdb, "ibp:alerts")
	in := &model.Inmate{Jurisdiction: model.JurisdictionTexas, ID: 42, FirstName: "John", LastName: "Doe"}
	require.NoError(t, n.Notify(ctx, in, model.Alert{AutoID: 7, Requester: "Mom"}))

	select {
	case msg := <-sub.Channel():
		var got AlertMessage
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.EqualValues(t, 7, got.AlertID)
		assert.Equal(t, "John Doe", got.InmateName)
	case <-time.After(2 * time.Second):
		t.Fatal("no alert published")
	}
}

func TestMetricsService_ShippingVolume(t *testing.T) {
	db := setupDB(t)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, db.Omit("Unit", "Requests").Create(&model.Shipment{DateShipped: day(2023, 5, 2), Weight: 32}).Error)
	require.NoError(t, db.Omit("Unit", "Requests").Create(&model.Shipment{DateShipped: day(2023, 6, 2), Weight: 33}).Error)

	svc := NewMetricsService(repository.NewMetricsRepository(db), day(2006, 6, 1))
	vol, err := svc.ShippingVolume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, VolumeSeries{Dates: []string{"2023-05", "2023-06"}, Pounds: []int64{2, 2}}, vol)

	counts, err := svc.RequestCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts.Dates)
}

func fakeGoogle(t *testing.T, email string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"email": email, "name": "Vol Unteer"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAuth(t *testing.T, db *gorm.DB, srv *httptest.Server) AuthService {
	cfg := &config.Config{
		Server: config.ServerConfig{SecretKey: "s3cret"},
		OAuth: config.OAuthConfig{
			ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/login/google",
			AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", UserInfoURL: srv.URL + "/userinfo",
		},
		Auth: config.AuthConfig{AllowedDomains: []string{"insidebooks.org"}},
	}
	return NewAuthService(cfg, repository.NewUserRepository(db))
}

func stateOf(t *testing.T, authURL string) string {
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestAuthService_Login(t *testing.T) {
	db := setupDB(t)
	srv := fakeGoogle(t, "Vol@InsideBooks.org")
	svc := newAuth(t, db, srv)
	ctx := context.Background()

	authURL, err := svc.AuthCodeURL("/view_inmate/3", "nonce-1")
	require.NoError(t, err)
	state := stateOf(t, authURL)
	require.NotEmpty(t, state)

	u, next, err := svc.Login(ctx, "good", state, "nonce-1")
	require.NoError(t, err)
	assert.Equal(t, "/view_inmate/3", next)
	assert.Equal(t, "vol@insidebooks.org", u.Email)
	assert.True(t, u.Authorized)

	stored, err := svc.User(ctx, "vol@insidebooks.org")
	require.NoError(t, err)
	assert.Equal(t, "Vol Unteer", stored.Name)

	_, _, err = svc.Login(ctx, "good", state+"x", "nonce-1")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, _, err = svc.Login(ctx, "bad", state, "nonce-1")
	assert.Error(t, err)
}

func TestAuthService_StateBoundToSession(t *testing.T) {
	db := setupDB(t)
	srv := fakeGoogle(t, "vol@insidebooks.org")
	svc := newAuth(t, db, srv)
	ctx := context.Background()

	_, err := svc.AuthCodeURL("/inmates", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	authURL, err := svc.AuthCodeURL("/inmates", "victim-nonce")
	require.NoError(t, err)
	state := stateOf(t, authURL)

	// a state minted for one browser cannot finish another browser's login
	_, _, err = svc.Login(ctx, "good", state, "attacker-nonce")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, _, err = svc.Login(ctx, "good", state, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.User(ctx, "vol@insidebooks.org")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_UnlistedUserNotAuthorized(t *testing.T) {
	db := setupDB(t)
	srv := fakeGoogle(t, "someone@example.com")
	svc := newAuth(t, db, srv)

	authURL, err := svc.AuthCodeURL("https://evil.example/", "n")
	require.NoError(t, err)
	u, next, err := svc.Login(context.Background(), "good", stateOf(t, authURL), "n")
	require.NoError(t, err)
	assert.False(t, u.Authorized)
	assert.Equal(t, DefaultLanding, next)
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                     DefaultLanding,
		"/view_inmate/1":       "/view_inmate/1",
		"/inmates?x=1":         "/inmates?x=1",
		"//evil.example":       DefaultLanding,
		"/\\evil.example":      DefaultLanding,
		"https://evil.example": DefaultLanding,
		"view_inmate/1":        DefaultLanding,
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeNext(in), in)
	}
}
