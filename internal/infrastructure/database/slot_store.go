package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageSlot is one persisted key of the housing snapshot.
type StorageSlot struct {
	SlotKey   string         `gorm:"column:slot_key;primaryKey;size:128"`
	Payload   datatypes.JSON `gorm:"column:payload;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (StorageSlot) TableName() string { return "StorageSlots" }

// SlotStore keeps the snapshot in a SQL table, one row per key.
type SlotStore struct {
	DB *gorm.DB
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row StorageSlot
	err := s.DB.WithContext(ctx).Where("slot_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return []byte(row.Payload), true, nil
}

// SetMany upserts every entry inside one transaction.
func (s *SlotStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	now := time.Now().UTC()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			row := StorageSlot{SlotKey: k, Payload: datatypes.JSON(entries[k]), UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slot_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("write slot %s: %w", k, err)
			}
		}
		return nil
	})
}
