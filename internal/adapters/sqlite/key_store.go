package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
)

type keyRecordModel struct {
	ProductKey   string    `gorm:"column:product_key;primaryKey"`
	AuthKey      string    `gorm:"column:auth_key;not null"`
	Status       string    `gorm:"column:status;not null"`
	ActivatedAt  *int64    `gorm:"column:activated_at"`
	DurationDays int64     `gorm:"column:duration_days;not null"`
	ExpiresAt    int64     `gorm:"column:expires_at;not null"`
	LastSeen     int64     `gorm:"column:last_seen;not null"`
	LastIP       string    `gorm:"column:last_ip;not null"`
	Discord      *string   `gorm:"column:discord"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (keyRecordModel) TableName() string {
	return "key_records"
}

// KeyStore is the sqlite backend for the key set. Load reads every row;
// Save replaces all rows inside one write transaction, matching the
// full-overwrite store contract.
type KeyStore struct {
	db *gormsqlite.DB
}

func NewKeyStore(db *gormsqlite.DB) *KeyStore {
	return &KeyStore{db: db}
}

func (r *KeyStore) Load(ctx context.Context) (domain.KeySet, error) {
	var models []keyRecordModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("load key records: %w", err)
	}

	keys := make(domain.KeySet, len(models))
	for _, model := range models {
		keys[model.ProductKey] = domain.KeyRecord{
			AuthKey:      model.AuthKey,
			Status:       domain.KeyStatus(model.Status),
			ActivatedAt:  model.ActivatedAt,
			DurationDays: model.DurationDays,
			ExpiresAt:    model.ExpiresAt,
			LastSeen:     model.LastSeen,
			LastIP:       model.LastIP,
			Discord:      model.Discord,
		}
	}
	return keys, nil
}

func (r *KeyStore) Save(ctx context.Context, keys domain.KeySet) error {
	now := time.Now().UTC()
	models := make([]keyRecordModel, 0, len(keys))
	for id, rec := range keys {
		models = append(models, keyRecordModel{
			ProductKey:   id,
			AuthKey:      rec.AuthKey,
			Status:       string(rec.Status),
			ActivatedAt:  rec.ActivatedAt,
			DurationDays: rec.DurationDays,
			ExpiresAt:    rec.ExpiresAt,
			LastSeen:     rec.LastSeen,
			LastIP:       rec.LastIP,
			Discord:      rec.Discord,
			UpdatedAt:    now,
		})
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Exec("DELETE FROM key_records").Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.CreateInBatches(models, 100).Error
	})
	if err != nil {
		return fmt.Errorf("save key records: %w", err)
	}
	return nil
}
