package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/ibp/internal/model"
)

func setupDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(tb.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(tb, err)
	require.NoError(tb, db.AutoMigrate(model.All()...))
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUnit(tb testing.TB, db *gorm.DB, name string) *model.Unit {
	tb.Helper()
	u := &model.Unit{
		Name: name, Street1: "1 Main St", City: "Huntsville", State: "TX", Zipcode: "77340",
		Jurisdiction: model.JurisdictionTexas, ShippingMethod: model.ShippingBox,
	}
	require.NoError(tb, db.Create(u).Error)
	return u
}

func seedInmate(tb testing.TB, db *gorm.DB, j string, id int64, first, last string, unit *model.Unit) *model.Inmate {
	tb.Helper()
	in := &model.Inmate{Jurisdiction: j, ID: id, FirstName: first, LastName: last}
	if unit != nil {
		in.UnitAutoID = &unit.AutoID
	}
	require.NoError(tb, db.Omit("Unit").Create(in).Error)
	return in
}

func TestInmateRepository_Search(t *testing.T) {
	db := setupDB(t)
	repo := NewInmateRepository(db)
	ctx := context.Background()
	unit := seedUnit(t, db, "Alpha")

	seedInmate(t, db, model.JurisdictionTexas, 1, "John", "Doe", unit)
	seedInmate(t, db, model.JurisdictionTexas, 2, "Johnny", "Doe", nil)
	seedInmate(t, db, model.JurisdictionFederal, 1, "Jane", "Roe", nil)

	res, err := repo.SearchByName(ctx, "jo", "DOE")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "John", res[0].FirstName)
	require.NotNil(t, res[0].Unit)
	assert.Equal(t, "Alpha", res[0].Unit.Name)
	assert.Nil(t, res[1].Unit)

	res, err = repo.ListByID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, model.JurisdictionFederal, res[0].Jurisdiction)

	in, err := repo.GetByKey(ctx, model.JurisdictionTexas, 2)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", in.FirstName)

	_, err = repo.GetByKey(ctx, model.JurisdictionFederal, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInmateRepository_UpsertKeepsChildren(t *testing.T) {
	db := setupDB(t)
	repo := NewInmateRepository(db)
	ctx := context.Background()

	in := seedInmate(t, db, model.JurisdictionTexas, 7, "John", "Doe", nil)
	require.NoError(t, db.Create(&model.Comment{InmateAutoID: in.AutoID, Datetime: time.Now(), Author: "a", Body: "b"}).Error)

	unit := seedUnit(t, db, "Beta")
	fetched := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Upsert(ctx, []*model.Inmate{{
		Jurisdiction: model.JurisdictionTexas, ID: 7, FirstName: "JOHN", LastName: "DOE",
		Release: "2031-01-01", DatetimeFetched: &fetched, UnitAutoID: &unit.AutoID,
	}}))

	var count int64
	require.NoError(t, db.Model(&model.Inmate{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := repo.GetByAutoID(ctx, in.AutoID)
	require.NoError(t, err)
	assert.Equal(t, "JOHN", got.FirstName)
	assert.Equal(t, "2031-01-01", got.Release)
	require.NotNil(t, got.Unit)
	assert.Equal(t, "Beta", got.Unit.Name)
	assert.Len(t, got.Comments, 1)

	// known autoid updates in place
	got.FirstName = "Johnathan"
	require.NoError(t, repo.Upsert(ctx, []*model.Inmate{got}))
	again, err := repo.GetByAutoID(ctx, in.AutoID)
	require.NoError(t, err)
	assert.Equal(t, "Johnathan", again.FirstName)
	assert.Len(t, again.Comments, 1)
}

func TestInmateRepository_RecordLookup(t *testing.T) {
	db := setupDB(t)
	repo := NewInmateRepository(db)
	ctx := context.Background()
	in := seedInmate(t, db, model.JurisdictionTexas, 1, "John", "Doe", nil)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.RecordLookup(ctx, in.AutoID, base.Add(time.Duration(i)*time.Hour)))
	}

	got, err := repo.GetByAutoID(ctx, in.AutoID)
	require.NoError(t, err)
	require.Len(t, got.Lookups, LookupRetention+1)
	assert.True(t, got.Lookups[0].Datetime.Equal(base.Add(4*time.Hour)))
	assert.True(t, got.Lookups[2].Datetime.Equal(base.Add(2*time.Hour)))
}

func TestRequestRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	in := seedInmate(t, db, model.JurisdictionTexas, 1, "John", "Doe", seedUnit(t, db, "Alpha"))

	req := &model.Request{
		InmateAutoID: in.AutoID, Action: model.ActionFilled,
		DateProcessed:  model.Date(time.Now()),
		DatePostmarked: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, req))
	require.NotZero(t, req.AutoID)

	got, err := repo.GetByAutoID(ctx, req.AutoID)
	require.NoError(t, err)
	require.NotNil(t, got.Inmate)
	require.NotNil(t, got.Inmate.Unit)
	assert.Equal(t, "Alpha", got.Inmate.Unit.Name)

	got.Action = model.ActionTossed
	require.NoError(t, repo.Update(ctx, got))
	list, err := repo.GetByAutoIDs(ctx, []uint{req.AutoID, 999})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.ActionTossed, list[0].Action)

	require.NoError(t, repo.Delete(ctx, req.AutoID))
	assert.ErrorIs(t, repo.Delete(ctx, req.AutoID), gorm.ErrRecordNotFound)
}

func TestShipmentRepository_Create(t *testing.T) {
	db := setupDB(t)
	repo := NewShipmentRepository(db)
	ctx := context.Background()
	unit := seedUnit(t, db, "Alpha")
	in := seedInmate(t, db, model.JurisdictionTexas, 1, "John", "Doe", unit)

	var ids []uint
	for i := 0; i < 2; i++ {
		r := &model.Request{InmateAutoID: in.AutoID, Action: model.ActionFilled, DateProcessed: model.Date(time.Now()), DatePostmarked: model.Date(time.Now())}
		require.NoError(t, db.Omit("Inmate", "Shipment").Create(r).Error)
		ids = append(ids, r.AutoID)
	}

	in.Release = "2030-01-01"
	s := &model.Shipment{DateShipped: model.Date(time.Now()), Weight: 32, Postage: 450, UnitAutoID: &unit.AutoID}
	require.NoError(t, repo.Create(ctx, s, ids, []*model.Inmate{in}))

	got, err := repo.GetByAutoID(ctx, s.AutoID)
	require.NoError(t, err)
	assert.Len(t, got.Requests, 2)
	require.NotNil(t, got.Unit)

	var reloaded model.Inmate
	require.NoError(t, db.First(&reloaded, in.AutoID).Error)
	assert.Equal(t, "2030-01-01", reloaded.Release)

	// a second shipment for the same requests rolls back entirely
	s2 := &model.Shipment{DateShipped: model.Date(time.Now()), UnitAutoID: &unit.AutoID}
	assert.ErrorIs(t, repo.Create(ctx, s2, ids, nil), ErrAlreadyShipped)
	var count int64
	require.NoError(t, db.Model(&model.Shipment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got.TrackingCode = "9400"
	got.Weight = 40
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByAutoID(ctx, s.AutoID)
	require.NoError(t, err)
	assert.Equal(t, "9400", got.TrackingCode)
	assert.Equal(t, 40, got.Weight)
}

func TestUnitRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewUnitRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertByName(ctx, []model.Unit{
		{Name: "Beta", Street1: "2 Elm", City: "Tyler", State: "TX", Zipcode: "75701"},
		{Name: "Alpha", Street1: "1 Main", City: "Huntsville", State: "TX", Zipcode: "77340"},
	}))
	require.NoError(t, repo.UpsertByName(ctx, []model.Unit{
		{Name: "Beta", Street1: "3 Oak", City: "Tyler", State: "TX", Zipcode: "75701"},
	}))

	units, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "Alpha", units[0].Name)
	assert.Equal(t, "3 Oak", units[1].Street1)

	u, err := repo.GetByName(ctx, "Alpha")
	require.NoError(t, err)
	u.URL = "https://example.org/alpha"
	require.NoError(t, repo.Update(ctx, u))
	u, err = repo.GetByAutoID(ctx, u.AutoID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/alpha", u.URL)
}

func TestUserRepository_Upsert(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.User{Email: "a@example.org", Name: "A", Authorized: true}))
	u := &model.User{Email: "a@example.org", Name: "Alice"}
	require.NoError(t, repo.Upsert(ctx, u))
	assert.False(t, u.Authorized)
	assert.Equal(t, "Alice", u.Name)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err := repo.Get(ctx, "b@example.org")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAlertRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewAlertRepository(db)
	ctx := context.Background()
	in := seedInmate(t, db, model.JurisdictionTexas, 1, "John", "Doe", nil)

	a := &model.Alert{InmateAutoID: in.AutoID, Requester: "Mom", Email: "mom@example.org"}
	require.NoError(t, repo.Create(ctx, a))
	now := time.Now().UTC()
	require.NoError(t, repo.MarkNotified(ctx, []uint{a.AutoID}, now))

	list, err := repo.ListByInmate(ctx, in.AutoID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].NotifiedAt)

	require.NoError(t, repo.Delete(ctx, a.AutoID))
	assert.ErrorIs(t, repo.Delete(ctx, a.AutoID), gorm.ErrRecordNotFound)
}

func TestMetricsRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewMetricsRepository(db)
	ctx := context.Background()
	a := seedInmate(t, db, model.JurisdictionTexas, 1, "John", "Doe", nil)
	b := seedInmate(t, db, model.JurisdictionTexas, 2, "Jane", "Doe", nil)

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	for _, r := range []model.Request{
		{InmateAutoID: a.AutoID, Action: model.ActionFilled, DatePostmarked: day(2006, 5, 1)},
		{InmateAutoID: a.AutoID, Action: model.ActionFilled, DatePostmarked: day(2024, 1, 3)},
		{InmateAutoID: a.AutoID, Action: model.ActionFilled, DatePostmarked: day(2024, 2, 3)},
		{InmateAutoID: b.AutoID, Action: model.ActionFilled, DatePostmarked: day(2024, 2, 9)},
		{InmateAutoID: b.AutoID, Action: model.ActionTossed, DatePostmarked: day(2024, 2, 10)},
	} {
		r := r
		r.DateProcessed = r.DatePostmarked
		require.NoError(t, db.Omit("Inmate", "Shipment").Create(&r).Error)
	}
	require.NoError(t, db.Omit("Unit", "Requests").Create(&model.Shipment{DateShipped: day(2024, 2, 20), Weight: 40}).Error)
	require.NoError(t, db.Omit("Unit", "Requests").Create(&model.Shipment{DateShipped: day(2024, 2, 21), Weight: 10}).Error)

	cutoff := day(2006, 6, 1)
	counts, err := repo.RequestCounts(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []MonthValue{{"2024-01", 1}, {"2024-02", 2}}, counts)

	fresh, err := repo.NewRequestCounts(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []MonthValue{{"2024-01", 1}, {"2024-02", 1}}, fresh)

	oz, err := repo.ShippedOunces(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []MonthValue{{"2024-02", 50}}, oz)
}

func BenchmarkSearchByName(b *testing.B) {
	db := setupDB(b)
	repo := NewInmateRepository(db)
	ctx := context.Background()
	for i := int64(1); i <= 2000; i++ {
		last := "Doe"
		if i%2 == 0 {
			last = "Roe"
		}
		seedInmate(b, db, model.JurisdictionTexas, i, "John", last, nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = repo.SearchByName(ctx, "jo", "doe")
	}
}
