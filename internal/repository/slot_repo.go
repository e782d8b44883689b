package repository

import (
	"context"
	"errors"
	"time"

	"rentview/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

type slotModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	WindowID  int64     `gorm:"column:window_id;uniqueIndex:idx_slot_window_start"`
	StartAt   time.Time `gorm:"column:start_at;uniqueIndex:idx_slot_window_start;index"`
	EndAt     time.Time `gorm:"column:end_at"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (slotModel) TableName() string { return "slots" }

func toDomainSlot(m slotModel) *domain.Slot {
	return &domain.Slot{
		ID:        m.ID,
		WindowID:  m.WindowID,
		StartAt:   m.StartAt,
		EndAt:     m.EndAt,
		Status:    domain.SlotStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UpsertBatch inserts slots keyed by (window_id, start_at). Existing rows are
// left untouched so re-materializing a window preserves reservations.
func (r *SlotRepository) UpsertBatch(ctx context.Context, slots []domain.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	ms := make([]slotModel, 0, len(slots))
	for _, s := range slots {
		ms = append(ms, slotModel{
			WindowID: s.WindowID,
			StartAt:  s.StartAt,
			EndAt:    s.EndAt,
			Status:   string(s.Status),
		})
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "window_id"}, {Name: "start_at"}},
		DoNothing: true,
	}).Create(&ms)
	return tx.Error
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	var m slotModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainSlot(m), nil
}

// ListFree returns free slots of active windows starting at or after `from`,
// ordered by start time with the id as tie-breaker.
func (r *SlotRepository) ListFree(ctx context.Context, from time.Time) ([]domain.Slot, error) {
	return r.list(ctx, `
SELECT s.*
FROM slots s
JOIN availability_windows w ON w.id = s.window_id
WHERE s.status = 'free'
  AND w.active = ?
  AND s.start_at >= ?
ORDER BY s.start_at ASC, s.id ASC
`, true, from)
}

// ListReserved returns slots currently held by a booking.
func (r *SlotRepository) ListReserved(ctx context.Context) ([]domain.Slot, error) {
	return r.list(ctx, `
SELECT s.*
FROM slots s
WHERE s.status <> 'free'
ORDER BY s.start_at ASC, s.id ASC
`)
}

func (r *SlotRepository) ListByWindow(ctx context.Context, windowID int64) ([]domain.Slot, error) {
	return r.list(ctx, `
SELECT s.*
FROM slots s
WHERE s.window_id = ?
ORDER BY s.start_at ASC, s.id ASC
`, windowID)
}

func (r *SlotRepository) list(ctx context.Context, q string, args ...any) ([]domain.Slot, error) {
	var ms []slotModel
	tx := r.db.WithContext(ctx).Raw(q, args...).Scan(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Slot, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainSlot(m))
	}
	return out, nil
}

func (r *SlotRepository) CountReservedForWindow(ctx context.Context, windowID int64) (int64, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&slotModel{}).
		Where("window_id = ? AND status <> ?", windowID, string(domain.SlotFree)).
		Count(&cnt)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return cnt, nil
}

// DeleteFreeOutsideRange removes free slots of a window that no longer fall
// inside its edited bounds. Reserved slots are kept until their bookings end.
func (r *SlotRepository) DeleteFreeOutsideRange(ctx context.Context, windowID int64, start, end time.Time) error {
	tx := r.db.WithContext(ctx).
		Where("window_id = ? AND status = ? AND (start_at < ? OR end_at > ?)",
			windowID, string(domain.SlotFree), start, end).
		Delete(&slotModel{})
	return tx.Error
}

func (r *SlotRepository) DeleteByWindow(ctx context.Context, windowID int64) error {
	tx := r.db.WithContext(ctx).Where("window_id = ?", windowID).Delete(&slotModel{})
	return tx.Error
}

// MarkFree releases a slot back to availability. Freeing an already-free slot
// is a no-op, which keeps cancellation idempotent.
func (r *SlotRepository) MarkFree(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Model(&slotModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(domain.SlotFree), "updated_at": time.Now().UTC()})
	return tx.Error
}
