package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OnDuty/internal/barcode"
	"OnDuty/internal/geo"
	"OnDuty/internal/model"
	"OnDuty/internal/model/dto"
	"OnDuty/pkg/errors"
)

// fakeStore 内存实现，记录写入以便断言
type fakeStore struct {
	locations map[string]*model.Location
	events    []model.Attendance
	schedules []model.UserSchedule
	holidays  map[string]*model.Holiday
	tiers     []model.LatePenaltyTier

	writeErr    error
	savedEvents []*model.Attendance
	savedLogs   []*model.AttendanceLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		locations: make(map[string]*model.Location),
		holidays:  make(map[string]*model.Holiday),
	}
}

func (f *fakeStore) ActiveLocationByCode(_ context.Context, code string) (*model.Location, error) {
	loc, ok := f.locations[code]
	if !ok || !loc.IsActive {
		return nil, nil
	}
	return loc, nil
}

func (f *fakeStore) LastEventOn(_ context.Context, userID int64, date time.Time) (*model.Attendance, error) {
	var last *model.Attendance
	for i := range f.events {
		e := &f.events[i]
		if e.UserID == userID && sameDay(e.ScanTime, date) {
			if last == nil || e.ScanTime.After(last.ScanTime) {
				last = e
			}
		}
	}
	return last, nil
}

func (f *fakeStore) LastCheckInOn(_ context.Context, userID int64, date time.Time) (*model.Attendance, error) {
	var last *model.Attendance
	for i := range f.events {
		e := &f.events[i]
		if e.UserID == userID && e.CheckType == model.CheckTypeIn && sameDay(e.ScanTime, date) {
			if last == nil || e.ScanTime.After(last.ScanTime) {
				last = e
			}
		}
	}
	return last, nil
}

func (f *fakeStore) ActiveSchedules(_ context.Context, userID int64, date time.Time) ([]model.UserSchedule, error) {
	var matched []model.UserSchedule
	for _, s := range f.schedules {
		if s.UserID == userID && s.ContainsDate(date) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (f *fakeStore) HolidayOn(_ context.Context, date time.Time) (*model.Holiday, error) {
	return f.holidays[date.Format("2006-01-02")], nil
}

func (f *fakeStore) PenaltyTiers(_ context.Context) ([]model.LatePenaltyTier, error) {
	return f.tiers, nil
}

func (f *fakeStore) CreateEventWithLog(_ context.Context, event *model.Attendance, auditLog *model.AttendanceLog) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	event.ID = int64(len(f.savedEvents) + 1)
	auditLog.AttendanceID = &event.ID
	f.savedEvents = append(f.savedEvents, event)
	f.savedLogs = append(f.savedLogs, auditLog)
	f.events = append(f.events, *event)
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// fakeLock 默认放行，可配置成拒绝
type fakeLock struct {
	denied   bool
	unlocked int
}

func (f *fakeLock) TryLock(_ context.Context, _ int64, _ string) (bool, error) {
	return !f.denied, nil
}

func (f *fakeLock) Unlock(_ context.Context, _ int64, _ string) error {
	f.unlocked++
	return nil
}

const testSecret = "scan-test-secret"

func testLocation() *model.Location {
	loc := &model.Location{
		Code:           "HQ-01",
		Name:           "Headquarters",
		Latitude:       51.5074,
		Longitude:      -0.1278,
		AllowedRadiusM: 100,
		Timezone:       "UTC",
		IsActive:       true,
	}
	loc.ID = 10
	return loc
}

func newScanFixture(store *fakeStore, at time.Time) (*AttendanceService, *fakeLock) {
	lock := &fakeLock{}
	svc := &AttendanceService{
		store: store,
		lock:  lock,
		barcode: barcode.NewService(barcode.Config{
			RotationSeconds: 300,
			SecretKey:       testSecret,
			Tolerance:       1,
		}),
		geo:  geo.NewValidator(geo.Config{MaxAccuracyMeters: 100}),
		calc: testCalculator(),
		now:  func() time.Time { return at },
	}
	return svc, lock
}

func testUser() *model.User {
	u := &model.User{EmployeeID: "E-001", Name: "Dana", Status: model.UserStatusActive}
	u.ID = 7
	return u
}

func scanReq(svc *AttendanceService, lat, lng float64) *dto.ScanRequest {
	return &dto.ScanRequest{
		Barcode: svc.barcode.Generate("HQ-01"),
		GPSLat:  &lat,
		GPSLng:  &lng,
	}
}

func TestProcessScanFirstCheckIn(t *testing.T) {
	store := newFakeStore()
	store.locations["HQ-01"] = testLocation()
	at := time.Date(2026, 3, 2, 8, 55, 0, 0, time.UTC)
	svc, lock := newScanFixture(store, at)

	resp, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 51.5074, -0.1278), "10.0.0.5")
	require.Nil(t, rejection)
	require.NotNil(t, resp)

	assert.Equal(t, "IN", resp.CheckType)
	assert.Equal(t, "ON_TIME", resp.Status)
	assert.Equal(t, "Headquarters", resp.LocationName)

	// 事件和审计日志一起落库
	require.Len(t, store.savedEvents, 1)
	require.Len(t, store.savedLogs, 1)
	event := store.savedEvents[0]
	assert.Equal(t, model.CheckTypeIn, event.CheckType)
	assert.Equal(t, model.AttendanceMethodAuto, event.Method)
	assert.Equal(t, "10.0.0.5", event.IPAddress)
	assert.Equal(t, model.AuditActionAutoCheckIn, store.savedLogs[0].Action)
	assert.Equal(t, event.ID, *store.savedLogs[0].AttendanceID)

	// 扫码锁被释放
	assert.Equal(t, 1, lock.unlocked)
}

func TestProcessScanAlternation(t *testing.T) {
	store := newFakeStore()
	store.locations["HQ-01"] = testLocation()
	at := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	svc, _ := newScanFixture(store, at)
	user := testUser()

	// 当天已有一条上班卡
	store.events = append(store.events, model.Attendance{
		UserID:    user.ID,
		CheckType: model.CheckTypeIn,
		ScanTime:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})

	resp, rejection := svc.ProcessScan(context.Background(), user, scanReq(svc, 51.5074, -0.1278), "")
	require.Nil(t, rejection)
	assert.Equal(t, "OUT", resp.CheckType)
	assert.Equal(t, 510, resp.WorkMinutes)
	assert.Equal(t, model.AuditActionAutoCheckOut, store.savedLogs[0].Action)

	// 第三次扫码翻转回上班卡
	resp, rejection = svc.ProcessScan(context.Background(), user, scanReq(svc, 51.5074, -0.1278), "")
	require.Nil(t, rejection)
	assert.Equal(t, "IN", resp.CheckType)
}

func TestProcessScanLateWithSchedule(t *testing.T) {
	store := newFakeStore()
	store.locations["HQ-01"] = testLocation()
	store.schedules = []model.UserSchedule{{
		UserID:    7,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Shift: &model.Shift{
			Code:         "DAY",
			StartTime:    "09:00:00",
			EndTime:      "17:00:00",
			LateAfterMin: 15,
			IsActive:     true,
		},
	}}
	max60 := 60
	store.tiers = []model.LatePenaltyTier{{MinLateMin: 16, MaxLateMin: &max60, PenaltyType: "WARNING"}}

	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc, _ := newScanFixture(store, at)

	resp, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 51.5074, -0.1278), "")
	require.Nil(t, rejection)
	assert.Equal(t, "LATE", resp.Status)
	// 从班次开始 09:00 算到 10:00
	assert.Equal(t, 60, resp.LateMinutes)
	assert.Equal(t, "WARNING", resp.PenaltyTier)
	assert.Equal(t, "DAY", resp.ShiftCode)
}

func TestProcessScanRejections(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("invalid coordinates short-circuit", func(t *testing.T) {
		store := newFakeStore()
		store.locations["HQ-01"] = testLocation()
		svc, _ := newScanFixture(store, at)

		_, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 0, 0), "")
		require.NotNil(t, rejection)
		assert.ErrorIs(t, rejection, errors.InvalidCoordinates)
		assert.Empty(t, store.savedEvents)
	})

	t.Run("unknown location", func(t *testing.T) {
		store := newFakeStore()
		svc, _ := newScanFixture(store, at)

		_, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 51.5074, -0.1278), "")
		require.NotNil(t, rejection)
		assert.ErrorIs(t, rejection, errors.LocationUnknownOrInactive)
	})

	t.Run("inactive location", func(t *testing.T) {
		store := newFakeStore()
		loc := testLocation()
		loc.IsActive = false
		store.locations["HQ-01"] = loc
		svc, _ := newScanFixture(store, at)

		_, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 51.5074, -0.1278), "")
		require.NotNil(t, rejection)
		assert.ErrorIs(t, rejection, errors.LocationUnknownOrInactive)
	})

	t.Run("accuracy checked before distance", func(t *testing.T) {
		store := newFakeStore()
		store.locations["HQ-01"] = testLocation()
		svc, _ := newScanFixture(store, at)

		accuracy := 150.0
		req := scanReq(svc, 51.5074, -0.1278)
		req.GPSAccuracyM = &accuracy

		_, rejection := svc.ProcessScan(context.Background(), testUser(), req, "")
		require.NotNil(t, rejection)
		assert.ErrorIs(t, rejection, errors.GPSAccuracyTooLow)
		// 精度拒绝时不附带距离诊断
		assert.Nil(t, rejection.Diagnostics)
		assert.Empty(t, store.savedEvents)
	})

	t.Run("outside radius with diagnostics", func(t *testing.T) {
		store := newFakeStore()
		store.locations["HQ-01"] = testLocation()
		svc, _ := newScanFixture(store, at)

		// 向北偏移约 200 米
		req := scanReq(svc, 51.5074+200.0/111195.0, -0.1278)
		_, rejection := svc.ProcessScan(context.Background(), testUser(), req, "")
		require.NotNil(t, rejection)
		assert.ErrorIs(t, rejection, errors.OutsideAllowedRadius)
		require.NotNil(t, rejection.Diagnostics)
		assert.InDelta(t, 200.0, rejection.Diagnostics["distance_m"], 1.0)
		assert.Equal(t, 100.0, rejection.Diagnostics["allowed_radius_m"])
		assert.Empty(t, store.savedEvents)
	})

	t.Run("concurrent scan denied by lock", func(t *testing.T) {
		store := newFakeStore()
		store.locations["HQ-01"] = testLocation()
		svc, lock := newScanFixture(store, at)
		lock.denied = true

		_, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 51.5074, -0.1278), "")
		require.NotNil(t, rejection)
		assert.ErrorIs(t, rejection, errors.ScanInProgress)
		assert.Empty(t, store.savedEvents)
		assert.Zero(t, lock.unlocked)
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		store := newFakeStore()
		store.locations["HQ-01"] = testLocation()
		store.writeErr = fmt.Errorf("connection reset")
		svc, _ := newScanFixture(store, at)

		_, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 51.5074, -0.1278), "")
		require.NotNil(t, rejection)
		assert.Contains(t, rejection.Error(), "storage failure")
		assert.Empty(t, store.savedEvents)
		assert.Empty(t, store.savedLogs)
	})
}

func TestProcessScanHolidayMultiplier(t *testing.T) {
	store := newFakeStore()
	store.locations["HQ-01"] = testLocation()
	store.holidays["2026-03-02"] = &model.Holiday{Name: "Founders Day", OvertimeMultiplier: 2.5}

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc, _ := newScanFixture(store, at)

	_, rejection := svc.ProcessScan(context.Background(), testUser(), scanReq(svc, 51.5074, -0.1278), "")
	require.Nil(t, rejection)

	event := store.savedEvents[0]
	assert.True(t, event.IsHoliday)
	assert.Equal(t, 2.5, event.OvertimeMultiplier)
}
