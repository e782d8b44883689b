package availability

import (
	"context"
	"testing"
	"time"

	"rentview/internal/domain"
	"rentview/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockWindowRepo struct {
	mock.Mock
}

func (m *mockWindowRepo) Create(ctx context.Context, w *domain.Window) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *mockWindowRepo) Update(ctx context.Context, w *domain.Window) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *mockWindowRepo) GetByID(ctx context.Context, id int64) (*domain.Window, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Window), args.Error(1)
}

func (m *mockWindowRepo) HasOverlap(ctx context.Context, start, end time.Time, excludeID int64) (bool, error) {
	args := m.Called(ctx, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockWindowRepo) List(ctx context.Context, from, to time.Time) ([]domain.Window, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Window), args.Error(1)
}

func (m *mockWindowRepo) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *mockWindowRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockSlotRepo struct {
	mock.Mock
}

func (m *mockSlotRepo) UpsertBatch(ctx context.Context, slots []domain.Slot) error {
	args := m.Called(ctx, slots)
	return args.Error(0)
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *mockSlotRepo) ListFree(ctx context.Context, from time.Time) ([]domain.Slot, error) {
	args := m.Called(ctx, from)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *mockSlotRepo) ListReserved(ctx context.Context) ([]domain.Slot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *mockSlotRepo) ListByWindow(ctx context.Context, windowID int64) ([]domain.Slot, error) {
	args := m.Called(ctx, windowID)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *mockSlotRepo) CountReservedForWindow(ctx context.Context, windowID int64) (int64, error) {
	args := m.Called(ctx, windowID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSlotRepo) DeleteFreeOutsideRange(ctx context.Context, windowID int64, start, end time.Time) error {
	args := m.Called(ctx, windowID, start, end)
	return args.Error(0)
}

func (m *mockSlotRepo) DeleteByWindow(ctx context.Context, windowID int64) error {
	args := m.Called(ctx, windowID)
	return args.Error(0)
}

type mockCanceller struct {
	mock.Mock
}

func (m *mockCanceller) CancelBySlot(ctx context.Context, slotID int64, reason string) error {
	args := m.Called(ctx, slotID, reason)
	return args.Error(0)
}

var (
	winStart = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	winEnd   = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
)

func TestCreateWindow_MaterializesSlots(t *testing.T) {
	windows := new(mockWindowRepo)
	slots := new(mockSlotRepo)
	svc := NewService(windows, slots, nil, 30*time.Minute, 24*time.Hour)

	windows.On("HasOverlap", mock.Anything, winStart, winEnd, int64(0)).Return(false, nil)
	windows.On("Create", mock.Anything, mock.AnythingOfType("*domain.Window")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Window).ID = 5 }).
		Return(nil)
	slots.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(batch []domain.Slot) bool {
		return len(batch) == 6 && batch[0].WindowID == 5
	})).Return(nil)

	w, err := svc.CreateWindow(context.Background(), 7, CreateWindowRequest{StartAt: winStart, EndAt: winEnd})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), w.ID)
	assert.True(t, w.Active)
	assert.Equal(t, int64(7), w.CreatedBy)
	slots.AssertExpectations(t)
}

func TestCreateWindow_RejectsOverlap(t *testing.T) {
	windows := new(mockWindowRepo)
	slots := new(mockSlotRepo)
	svc := NewService(windows, slots, nil, 30*time.Minute, 24*time.Hour)

	windows.On("HasOverlap", mock.Anything, winStart, winEnd, int64(0)).Return(true, nil)

	_, err := svc.CreateWindow(context.Background(), 7, CreateWindowRequest{StartAt: winStart, EndAt: winEnd})

	assert.ErrorIs(t, err, ErrWindowOverlap)
	windows.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	slots.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestCreateWindow_RejectsInvertedBounds(t *testing.T) {
	svc := NewService(new(mockWindowRepo), new(mockSlotRepo), nil, 30*time.Minute, 24*time.Hour)

	_, err := svc.CreateWindow(context.Background(), 7, CreateWindowRequest{StartAt: winEnd, EndAt: winStart})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateWindow(context.Background(), 7, CreateWindowRequest{StartAt: winStart, EndAt: winStart})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateWindow_DropsFreeSlotsOutsideNewBounds(t *testing.T) {
	windows := new(mockWindowRepo)
	slots := new(mockSlotRepo)
	svc := NewService(windows, slots, nil, 30*time.Minute, 24*time.Hour)

	existing := &domain.Window{ID: 5, StartAt: winStart, EndAt: winEnd, Active: true}
	newEnd := winEnd.Add(-time.Hour)

	windows.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	windows.On("HasOverlap", mock.Anything, winStart, newEnd, int64(5)).Return(false, nil)
	windows.On("Update", mock.Anything, mock.AnythingOfType("*domain.Window")).Return(nil)
	slots.On("DeleteFreeOutsideRange", mock.Anything, int64(5), winStart, newEnd).Return(nil)
	slots.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	w, err := svc.UpdateWindow(context.Background(), 5, UpdateWindowRequest{StartAt: winStart, EndAt: newEnd})

	assert.NoError(t, err)
	assert.Equal(t, newEnd, w.EndAt)
	slots.AssertExpectations(t)
}

func TestUpdateWindow_UnknownWindow(t *testing.T) {
	windows := new(mockWindowRepo)
	svc := NewService(windows, new(mockSlotRepo), nil, 30*time.Minute, 24*time.Hour)

	windows.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrNotFound)

	_, err := svc.UpdateWindow(context.Background(), 99, UpdateWindowRequest{StartAt: winStart, EndAt: winEnd})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleActive_FlipsFlag(t *testing.T) {
	windows := new(mockWindowRepo)
	svc := NewService(windows, new(mockSlotRepo), nil, 30*time.Minute, 24*time.Hour)

	windows.On("GetByID", mock.Anything, int64(5)).Return(&domain.Window{ID: 5, Active: true}, nil)
	windows.On("SetActive", mock.Anything, int64(5), false).Return(nil)

	w, err := svc.ToggleActive(context.Background(), 5)

	assert.NoError(t, err)
	assert.False(t, w.Active)
	windows.AssertExpectations(t)
}

func TestAvailableSlots_AppliesLeadTimeCutoff(t *testing.T) {
	windows := new(mockWindowRepo)
	slots := new(mockSlotRepo)
	svc := NewService(windows, slots, nil, 30*time.Minute, 24*time.Hour)
	fixed := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	expected := []domain.Slot{{ID: 1, WindowID: 5, Status: domain.SlotFree}}
	slots.On("ListFree", mock.Anything, fixed.Add(24*time.Hour)).Return(expected, nil)

	got, err := svc.AvailableSlots(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, got)
	slots.AssertExpectations(t)
}

func TestDeleteWindow_RefusedWhileReserved(t *testing.T) {
	windows := new(mockWindowRepo)
	slots := new(mockSlotRepo)
	svc := NewService(windows, slots, nil, 30*time.Minute, 24*time.Hour)

	windows.On("GetByID", mock.Anything, int64(5)).Return(&domain.Window{ID: 5}, nil)
	slots.On("CountReservedForWindow", mock.Anything, int64(5)).Return(int64(2), nil)

	err := svc.DeleteWindow(context.Background(), 5, false)

	assert.ErrorIs(t, err, ErrWindowHasReservations)
	slots.AssertNotCalled(t, "DeleteByWindow", mock.Anything, mock.Anything)
	windows.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteWindow_CascadeCancelsReservedSlots(t *testing.T) {
	windows := new(mockWindowRepo)
	slots := new(mockSlotRepo)
	canceller := new(mockCanceller)
	svc := NewService(windows, slots, canceller, 30*time.Minute, 24*time.Hour)

	windows.On("GetByID", mock.Anything, int64(5)).Return(&domain.Window{ID: 5}, nil)
	slots.On("CountReservedForWindow", mock.Anything, int64(5)).Return(int64(1), nil)
	slots.On("ListByWindow", mock.Anything, int64(5)).Return([]domain.Slot{
		{ID: 10, WindowID: 5, Status: domain.SlotFree},
		{ID: 11, WindowID: 5, Status: domain.SlotReserved},
	}, nil)
	canceller.On("CancelBySlot", mock.Anything, int64(11), "availability window removed").Return(nil)
	slots.On("DeleteByWindow", mock.Anything, int64(5)).Return(nil)
	windows.On("Delete", mock.Anything, int64(5)).Return(nil)

	err := svc.DeleteWindow(context.Background(), 5, true)

	assert.NoError(t, err)
	canceller.AssertExpectations(t)
	canceller.AssertNumberOfCalls(t, "CancelBySlot", 1)
	windows.AssertExpectations(t)
}

func TestDeleteWindow_NoReservationsDeletesDirectly(t *testing.T) {
	windows := new(mockWindowRepo)
	slots := new(mockSlotRepo)
	svc := NewService(windows, slots, nil, 30*time.Minute, 24*time.Hour)

	windows.On("GetByID", mock.Anything, int64(5)).Return(&domain.Window{ID: 5}, nil)
	slots.On("CountReservedForWindow", mock.Anything, int64(5)).Return(int64(0), nil)
	slots.On("DeleteByWindow", mock.Anything, int64(5)).Return(nil)
	windows.On("Delete", mock.Anything, int64(5)).Return(nil)

	assert.NoError(t, svc.DeleteWindow(context.Background(), 5, false))
}
