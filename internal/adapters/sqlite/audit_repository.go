package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/google/uuid"
)

type auditEventModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	EventID    string    `gorm:"column:event_id;not null"`
	Action     string    `gorm:"column:action;not null"`
	ProductKey string    `gorm:"column:product_key;not null"`
	Actor      string    `gorm:"column:actor;not null"`
	Detail     string    `gorm:"column:detail;not null"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
}

func (auditEventModel) TableName() string {
	return "audit_events"
}

type AuditRepository struct {
	db *gormsqlite.DB
}

func NewAuditRepository(db *gormsqlite.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, event domain.AuditEvent) error {
	model := auditEventModel{
		EventID:    uuid.NewString(),
		Action:     event.Action,
		ProductKey: event.ProductKey,
		Actor:      event.Actor,
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt,
	}
	if model.OccurredAt.IsZero() {
		model.OccurredAt = time.Now().UTC()
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	var rows []auditEventModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&auditEventModel{})
		if filter.Action != "" {
			query = query.Where("action = ?", filter.Action)
		}
		if filter.AfterID > 0 {
			query = query.Where("id < ?", filter.AfterID)
		}
		return query.Order("id DESC").Limit(filter.Limit).Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	result := make([]domain.AuditEvent, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.AuditEvent{
			ID:         row.ID,
			EventID:    row.EventID,
			Action:     row.Action,
			ProductKey: row.ProductKey,
			Actor:      row.Actor,
			Detail:     row.Detail,
			OccurredAt: row.OccurredAt,
		})
	}
	return result, nil
}
