package config

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	entity "gallery.GO/model/entity"
)

const (
	ScopeDefault = "default"
	ScopeStores  = "stores"
)

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// StoreValues returns the values under prefix keyed by the last path segment.
// Store scope rows override default scope rows.
func (r *ConfigRepository) StoreValues(ctx context.Context, prefix string, storeID uint16) (map[string]string, error) {
	var rows []entity.CoreConfigData
	err := r.db.WithContext(ctx).
		Where("path LIKE ?", strings.TrimSuffix(prefix, "/")+"/%").
		Where("(scope = ? AND scope_id = 0) OR (scope = ? AND scope_id = ?)", ScopeDefault, ScopeStores, storeID).
		Order("config_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", prefix, err)
	}
	out := make(map[string]string, len(rows))
	scoped := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Value == nil {
			continue
		}
		key := row.Path[strings.LastIndex(row.Path, "/")+1:]
		if row.Scope == ScopeStores && storeID != 0 {
			out[key] = *row.Value
			scoped[key] = true
			continue
		}
		if !scoped[key] {
			out[key] = *row.Value
		}
	}
	return out, nil
}

// Save upserts one value.
func (r *ConfigRepository) Save(ctx context.Context, scope string, scopeID int, path, value string) error {
	db := r.db.WithContext(ctx)
	var row entity.CoreConfigData
	err := db.Where("scope = ? AND scope_id = ? AND path = ?", scope, scopeID, path).
		Attrs(entity.CoreConfigData{Scope: scope, ScopeID: scopeID, Path: path}).
		FirstOrInit(&row).Error
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	row.Value = &value
	if err := db.Save(&row).Error; err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	return nil
}
