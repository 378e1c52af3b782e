package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockTakeSessionRepository implements StockTakeSessionRepository using GORM
type GormStockTakeSessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStockTakeSessionRepository creates a new GormStockTakeSessionRepository
func NewGormStockTakeSessionRepository(db *gorm.DB) *GormStockTakeSessionRepository {
	return &GormStockTakeSessionRepository{db: db, now: time.Now}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_code ASC, product_id ASC")
	})
}

// FindByIDForTenant finds a session with its lines
func (r *GormStockTakeSessionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockTakeSession, error) {
	var model models.StockTakeSessionModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), preloadLines).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByLocation finds the in-progress session of a location
func (r *GormStockTakeSessionRepository) FindActiveByLocation(ctx context.Context, tenantID, locationID uuid.UUID) (*inventory.StockTakeSession, error) {
	var model models.StockTakeSessionModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), preloadLines).
		Where("location_id = ? AND status = ?", locationID, inventory.SessionStatusInProgress).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists sessions without their lines
func (r *GormStockTakeSessionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter inventory.SessionFilter) ([]inventory.StockTakeSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockTakeSessionModel{}).Scopes(tenantScope(tenantID))
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(session_number) LIKE ? OR LOWER(location_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessionModels []models.StockTakeSessionModel
	if err := query.Scopes(pageScope(filter.Filter, StockTakeSessionSortFields, "created_at")).
		Find(&sessionModels).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]inventory.StockTakeSession, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = *sessionModels[i].ToDomain()
	}
	return sessions, total, nil
}

// Create inserts a session and all of its lines
func (r *GormStockTakeSessionRepository) Create(ctx context.Context, session *inventory.StockTakeSession) error {
	model := models.StockTakeSessionModelFromDomain(session)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(model).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.CreateInBatches(model.Lines, 200).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.WrapDomainError(shared.ErrAlreadyExists.Code, "Stock take already exists for this location or number", err)
	}
	return err
}

// Save updates the session row under an optimistic lock, then its counts.
// Lines are fixed once created; only their counted fields change.
func (r *GormStockTakeSessionRepository) Save(ctx context.Context, session *inventory.StockTakeSession) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.StockTakeSessionModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", session.ID, session.TenantID, session.Version).
			Updates(map[string]any{
				"status":        session.Status,
				"completed_at":  session.CompletedAt,
				"cancelled_at":  session.CancelledAt,
				"cancel_reason": session.CancelReason,
				"remark":        session.Remark,
				"updated_at":    session.UpdatedAt,
				"version":       session.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.StockTakeSessionModel{}).
				Where("id = ? AND tenant_id = ?", session.ID, session.TenantID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		for i := range session.Lines {
			line := &session.Lines[i]
			if err := tx.Model(&models.StockTakeLineModel{}).
				Where("id = ? AND session_id = ?", line.ID, session.ID).
				Updates(map[string]any{
					"counted_quantity": line.CountedQuantity,
					"counted_at":       line.CountedAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	session.IncrementVersion()
	return nil
}

// GenerateSessionNumber returns the next number of the form ST-YYYYMMDD-NNNN
func (r *GormStockTakeSessionRepository) GenerateSessionNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("ST-%s-", r.now().Format("20060102"))

	var numbers []string
	err := r.db.WithContext(ctx).Model(&models.StockTakeSessionModel{}).
		Scopes(tenantScope(tenantID)).
		Where("session_number LIKE ?", prefix+"%").
		Order("session_number DESC").
		Limit(1).
		Pluck("session_number", &numbers).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if len(numbers) > 0 {
		var last int
		if _, err := fmt.Sscanf(strings.TrimPrefix(numbers[0], prefix), "%d", &last); err == nil {
			seq = last + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

var _ inventory.StockTakeSessionRepository = (*GormStockTakeSessionRepository)(nil)
