package repository

import (
	"context"
	"errors"
	"time"

	"rentview/internal/domain"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type WindowRepository struct {
	db *gorm.DB
}

func NewWindowRepository(db *gorm.DB) *WindowRepository {
	return &WindowRepository{db: db}
}

type windowModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	StartAt   time.Time `gorm:"column:start_at;index"`
	EndAt     time.Time `gorm:"column:end_at"`
	Active    bool      `gorm:"column:active"`
	CreatedBy int64     `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (windowModel) TableName() string { return "availability_windows" }

func toDomainWindow(m windowModel) *domain.Window {
	return &domain.Window{
		ID:        m.ID,
		StartAt:   m.StartAt,
		EndAt:     m.EndAt,
		Active:    m.Active,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toWindowModel(w *domain.Window) windowModel {
	return windowModel{
		ID:        w.ID,
		StartAt:   w.StartAt,
		EndAt:     w.EndAt,
		Active:    w.Active,
		CreatedBy: w.CreatedBy,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (r *WindowRepository) Create(ctx context.Context, w *domain.Window) error {
	m := toWindowModel(w)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*w = *toDomainWindow(m)
	return nil
}

func (r *WindowRepository) Update(ctx context.Context, w *domain.Window) error {
	m := toWindowModel(w)
	tx := r.db.WithContext(ctx).Model(&windowModel{}).
		Where("id = ?", w.ID).
		Updates(map[string]any{
			"start_at":   m.StartAt,
			"end_at":     m.EndAt,
			"active":     m.Active,
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WindowRepository) GetByID(ctx context.Context, id int64) (*domain.Window, error) {
	var m windowModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainWindow(m), nil
}

// HasOverlap reports whether any other window intersects [start, end).
// Plain comparisons instead of range types so the query runs on SQLite too.
func (r *WindowRepository) HasOverlap(ctx context.Context, start, end time.Time, excludeID int64) (bool, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM availability_windows
WHERE id <> ?
  AND start_at < ?
  AND end_at > ?
`
	tx := r.db.WithContext(ctx).Raw(q, excludeID, end, start).Scan(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *WindowRepository) List(ctx context.Context, from, to time.Time) ([]domain.Window, error) {
	var ms []windowModel
	tx := r.db.WithContext(ctx).
		Where("start_at < ? AND end_at > ?", to, from).
		Order("start_at asc").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Window, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainWindow(m))
	}
	return out, nil
}

func (r *WindowRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tx := r.db.WithContext(ctx).Model(&windowModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WindowRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&windowModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
