package entity

import "time"

// CoreConfigData represents the core_config_data table.
type CoreConfigData struct {
	ConfigID  uint      `gorm:"column:config_id;primaryKey;autoIncrement" json:"config_id"`
	Scope     string    `gorm:"column:scope;type:varchar(8);not null;default:default;uniqueIndex:idx_config_scope_path" json:"scope"`
	ScopeID   int       `gorm:"column:scope_id;not null;default:0;uniqueIndex:idx_config_scope_path" json:"scope_id"`
	Path      string    `gorm:"column:path;type:varchar(255);not null;uniqueIndex:idx_config_scope_path" json:"path"`
	Value     *string   `gorm:"column:value;type:text" json:"value,omitempty"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CoreConfigData) TableName() string {
	return "core_config_data"
}
