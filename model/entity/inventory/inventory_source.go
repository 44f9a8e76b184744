package inventory

// InventorySource represents inventory_source table (MSI)
type InventorySource struct {
	SourceCode string `gorm:"column:source_code;type:varchar(255);primaryKey" json:"source_code"`
	Name       string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Enabled    uint8  `gorm:"column:enabled;type:smallint unsigned;not null;default:1" json:"enabled"`
}

func (InventorySource) TableName() string {
	return "inventory_source"
}
