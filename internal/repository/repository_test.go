package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"rentview/internal/database"
	"rentview/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedWindowWithSlots(t *testing.T, db *gorm.DB, start time.Time, slots int) (*domain.Window, []domain.Slot) {
	t.Helper()
	ctx := context.Background()
	windows := NewWindowRepository(db)
	slotRepo := NewSlotRepository(db)

	w := &domain.Window{
		StartAt: start,
		EndAt:   start.Add(time.Duration(slots) * 30 * time.Minute),
		Active:  true,
	}
	require.NoError(t, windows.Create(ctx, w))

	batch := make([]domain.Slot, 0, slots)
	for i := 0; i < slots; i++ {
		batch = append(batch, domain.Slot{
			WindowID: w.ID,
			StartAt:  start.Add(time.Duration(i) * 30 * time.Minute),
			EndAt:    start.Add(time.Duration(i+1) * 30 * time.Minute),
			Status:   domain.SlotFree,
		})
	}
	require.NoError(t, slotRepo.UpsertBatch(ctx, batch))

	stored, err := slotRepo.ListByWindow(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, stored, slots)
	return w, stored
}

func TestReserveSlotAndCreate_SecondReservationLoses(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)
	slots := NewSlotRepository(db)

	_, stored := seedWindowWithSlots(t, db, time.Now().Add(48*time.Hour).UTC(), 2)
	slotID := stored[0].ID

	first := &domain.Booking{SlotID: slotID, UserID: 42, Address: "Abay 15"}
	require.NoError(t, bookings.ReserveSlotAndCreate(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, domain.BookingPending, first.Status)

	slot, err := slots.GetByID(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotReserved, slot.Status)

	second := &domain.Booking{SlotID: slotID, UserID: 43}
	assert.ErrorIs(t, bookings.ReserveSlotAndCreate(ctx, second), ErrSlotNotFree)

	// the other slot is unaffected
	other, err := slots.GetByID(ctx, stored[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotFree, other.Status)
}

func TestCancelAndFreeSlot_ReleasesSlotOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)
	slots := NewSlotRepository(db)

	_, stored := seedWindowWithSlots(t, db, time.Now().Add(48*time.Hour).UTC(), 1)
	slotID := stored[0].ID

	b := &domain.Booking{SlotID: slotID, UserID: 42}
	require.NoError(t, bookings.ReserveSlotAndCreate(ctx, b))

	applied, err := bookings.CancelAndFreeSlot(ctx, b.ID, domain.BookingPending, "plans changed", true)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, "plans changed", got.CancellationReason)

	slot, err := slots.GetByID(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotFree, slot.Status)

	// status guard: a second cancel does not apply again
	applied, err = bookings.CancelAndFreeSlot(ctx, b.ID, domain.BookingPending, "again", true)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestUpdateStatus_PinsExpectedStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)

	_, stored := seedWindowWithSlots(t, db, time.Now().Add(48*time.Hour).UTC(), 1)

	b := &domain.Booking{SlotID: stored[0].ID, UserID: 42}
	require.NoError(t, bookings.ReserveSlotAndCreate(ctx, b))

	applied, err := bookings.UpdateStatus(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed, "")
	require.NoError(t, err)
	assert.True(t, applied)

	// stale transition from pending no longer matches
	applied, err = bookings.UpdateStatus(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed, "")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = bookings.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingOnSite, "Abay 15")
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingOnSite, got.Status)
	assert.Equal(t, "Abay 15", got.Address)
}

func TestExpire_GuardedAndFreesSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)
	slots := NewSlotRepository(db)

	start := time.Now().Add(-3 * time.Hour).UTC()
	_, stored := seedWindowWithSlots(t, db, start, 1)

	b := &domain.Booking{SlotID: stored[0].ID, UserID: 42}
	require.NoError(t, bookings.ReserveSlotAndCreate(ctx, b))

	overdue, err := bookings.ListActiveOverdue(ctx, time.Now().Add(-time.Hour).UTC())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, b.ID, overdue[0].ID)

	applied, err := bookings.Expire(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingExpired, got.Status)

	slot, err := slots.GetByID(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotFree, slot.Status)

	applied, err = bookings.Expire(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestUpsertBatch_PreservesExistingSlots(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)
	slots := NewSlotRepository(db)

	w, stored := seedWindowWithSlots(t, db, time.Now().Add(48*time.Hour).UTC(), 3)

	b := &domain.Booking{SlotID: stored[1].ID, UserID: 42}
	require.NoError(t, bookings.ReserveSlotAndCreate(ctx, b))

	// re-materializing the same window must not duplicate rows or reset status
	again := make([]domain.Slot, 0, len(stored))
	for _, s := range stored {
		again = append(again, domain.Slot{
			WindowID: s.WindowID,
			StartAt:  s.StartAt,
			EndAt:    s.EndAt,
			Status:   domain.SlotFree,
		})
	}
	require.NoError(t, slots.UpsertBatch(ctx, again))

	all, err := slots.ListByWindow(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, domain.SlotReserved, all[1].Status)
}

func TestHasOverlap_BoundariesDoNotTouch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	windows := NewWindowRepository(db)

	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	w := &domain.Window{StartAt: start, EndAt: end, Active: true}
	require.NoError(t, windows.Create(ctx, w))

	overlap, err := windows.HasOverlap(ctx, start.Add(time.Hour), end.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.True(t, overlap)

	// back-to-back windows are legal
	overlap, err = windows.HasOverlap(ctx, end, end.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.False(t, overlap)

	// a window never overlaps itself during update
	overlap, err = windows.HasOverlap(ctx, start, end, w.ID)
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestListFree_SkipsInactiveWindowsAndOrders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	windows := NewWindowRepository(db)
	slots := NewSlotRepository(db)

	base := time.Now().Add(48 * time.Hour).UTC()
	active, activeSlots := seedWindowWithSlots(t, db, base, 2)
	inactive, _ := seedWindowWithSlots(t, db, base.Add(6*time.Hour), 2)
	require.NoError(t, windows.SetActive(ctx, inactive.ID, false))

	free, err := slots.ListFree(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, free, 2)
	for i, s := range free {
		assert.Equal(t, active.ID, s.WindowID)
		assert.Equal(t, activeSlots[i].ID, s.ID)
	}
	assert.True(t, free[0].StartAt.Before(free[1].StartAt))
}

func TestGetActiveBySlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)

	_, stored := seedWindowWithSlots(t, db, time.Now().Add(48*time.Hour).UTC(), 1)
	slotID := stored[0].ID

	_, err := bookings.GetActiveBySlot(ctx, slotID)
	assert.ErrorIs(t, err, ErrNotFound)

	b := &domain.Booking{SlotID: slotID, UserID: 42}
	require.NoError(t, bookings.ReserveSlotAndCreate(ctx, b))

	got, err := bookings.GetActiveBySlot(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = bookings.CancelAndFreeSlot(ctx, b.ID, domain.BookingPending, "", true)
	require.NoError(t, err)

	_, err = bookings.GetActiveBySlot(ctx, slotID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", errors.New("database is locked"), true},
		{"sqlite table lock", errors.New("database table is locked"), true},
		{"unrelated error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestDeleteFreeOutsideRange_KeepsReserved(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)
	slots := NewSlotRepository(db)

	base := time.Now().Add(48 * time.Hour).UTC()
	w, stored := seedWindowWithSlots(t, db, base, 4)

	// reserve the last slot, then shrink the window to the first hour
	b := &domain.Booking{SlotID: stored[3].ID, UserID: 42}
	require.NoError(t, bookings.ReserveSlotAndCreate(ctx, b))

	require.NoError(t, slots.DeleteFreeOutsideRange(ctx, w.ID, base, base.Add(time.Hour)))

	remaining, err := slots.ListByWindow(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	assert.Equal(t, domain.SlotReserved, remaining[2].Status)
}
