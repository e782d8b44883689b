package repository

import (
	"context"
	"errors"
	"time"

	"rentview/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrSlotNotFree means the slot was taken between the client's query and the
// reservation attempt. Callers re-query and pick another slot.
var ErrSlotNotFree = errors.New("slot is not free")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	SlotID             int64      `gorm:"column:slot_id;index;uniqueIndex:idx_one_active_booking_per_slot,where:status = 'pending' OR status = 'confirmed' OR status = 'on_site'"`
	UserID             int64      `gorm:"column:user_id;index"`
	Address            *string    `gorm:"column:address"`
	Status             string     `gorm:"column:status;index"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	RequestedAt        time.Time  `gorm:"column:requested_at"`
	StatusUpdatedAt    time.Time  `gorm:"column:status_updated_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var address, reason string
	if m.Address != nil {
		address = *m.Address
	}
	if m.CancellationReason != nil {
		reason = *m.CancellationReason
	}
	return &domain.Booking{
		ID:                 m.ID,
		SlotID:             m.SlotID,
		UserID:             m.UserID,
		Address:            address,
		Status:             domain.BookingStatus(m.Status),
		CancellationReason: reason,
		RequestedAt:        m.RequestedAt,
		StatusUpdatedAt:    m.StatusUpdatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ReserveSlotAndCreate is the single atomic unit behind booking requests: the
// slot flips free -> reserved and the pending booking row is inserted in one
// transaction. Losing the race on either step yields ErrSlotNotFree.
//
// Two guards back the mutual-exclusion invariant: the conditional UPDATE on
// slots.status, and idx_one_active_booking_per_slot, a partial unique index on
// bookings(slot_id) over active statuses.
func (r *BookingRepository) ReserveSlotAndCreate(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		res := tx.Model(&slotModel{}).
			Where("id = ? AND status = ?", b.SlotID, string(domain.SlotFree)).
			Updates(map[string]any{"status": string(domain.SlotReserved), "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotNotFree
		}

		m := bookingModel{
			SlotID:          b.SlotID,
			UserID:          b.UserID,
			Address:         optional(b.Address),
			Status:          string(domain.BookingPending),
			RequestedAt:     now,
			StatusUpdatedAt: now,
		}
		if err := tx.Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSlotNotFree
			}
			return err
		}

		*b = *toDomainBooking(m)
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsTransient reports whether the storage error is a lock/serialization
// failure worth a bounded retry (serialization_failure, deadlock_detected,
// lock_not_available on Postgres; SQLite surfaces busy as a locked database).
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
		return false
	}
	if err != nil {
		msg := err.Error()
		return msg == "database is locked" || msg == "database table is locked"
	}
	return false
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// GetActiveBySlot returns the booking currently holding the slot, or ErrNotFound.
func (r *BookingRepository) GetActiveBySlot(ctx context.Context, slotID int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).
		Where("slot_id = ? AND status IN ?", slotID, activeStatuses()).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func activeStatuses() []string {
	return []string{
		string(domain.BookingPending),
		string(domain.BookingConfirmed),
		string(domain.BookingOnSite),
	}
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return r.listWhere(ctx, "1 = 1")
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.listWhere(ctx, "user_id = ?", userID)
}

func (r *BookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	return r.listWhere(ctx, "status = ?", string(status))
}

func (r *BookingRepository) listWhere(ctx context.Context, cond string, args ...any) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).Where(cond, args...).Order("requested_at asc, id asc").Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// UpdateStatus writes an already-validated transition. The WHERE clause pins
// the expected current status so concurrent actors cannot double-apply it.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, address string) (bool, error) {
	updates := map[string]any{
		"status":            string(to),
		"status_updated_at": time.Now().UTC(),
	}
	if address != "" {
		updates["address"] = address
	}
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// CancelAndFreeSlot terminates the booking and releases its slot in one
// transaction. freeSlot is false when the slot time already elapsed.
func (r *BookingRepository) CancelAndFreeSlot(ctx context.Context, id int64, from domain.BookingStatus, reason string, freeSlot bool) (bool, error) {
	var applied bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(map[string]any{
				"status":              string(domain.BookingCancelled),
				"cancellation_reason": optional(reason),
				"status_updated_at":   now,
				"cancelled_at":        now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if !freeSlot {
			return nil
		}
		var m bookingModel
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		return tx.Model(&slotModel{}).
			Where("id = ?", m.SlotID).
			Updates(map[string]any{"status": string(domain.SlotFree), "updated_at": now}).Error
	})
	return applied, err
}

// ListActiveOverdue returns pending/confirmed bookings whose slot started
// before the cutoff. The expiry sweep walks this list.
func (r *BookingRepository) ListActiveOverdue(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	q := `
SELECT b.*
FROM bookings b
JOIN slots s ON s.id = b.slot_id
WHERE b.status IN ('pending', 'confirmed')
  AND s.start_at < ?
ORDER BY b.id ASC
`
	tx := r.db.WithContext(ctx).Raw(q, cutoff).Scan(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// Expire moves one overdue booking to expired and frees its slot. The status
// guard makes a second sweep over the same booking a no-op.
func (r *BookingRepository) Expire(ctx context.Context, id int64) (bool, error) {
	var applied bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status IN ?", id, []string{
				string(domain.BookingPending),
				string(domain.BookingConfirmed),
			}).
			Updates(map[string]any{
				"status":            string(domain.BookingExpired),
				"status_updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		var m bookingModel
		if err := tx.First(&m, id).Error; err != nil {
			return err
		}
		return tx.Model(&slotModel{}).
			Where("id = ?", m.SlotID).
			Updates(map[string]any{"status": string(domain.SlotFree), "updated_at": now}).Error
	})
	return applied, err
}
