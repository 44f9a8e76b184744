package entity

// EavAttribute represents the eav_attribute table.
type EavAttribute struct {
	AttributeID   uint    `gorm:"column:attribute_id;primaryKey;autoIncrement" json:"attribute_id"`
	EntityTypeID  uint16  `gorm:"column:entity_type_id;not null;default:4" json:"entity_type_id"`
	AttributeCode string  `gorm:"column:attribute_code;type:varchar(255);not null;index" json:"attribute_code"`
	BackendType   string  `gorm:"column:backend_type;type:varchar(8);not null;default:static" json:"backend_type"`
	FrontendInput *string `gorm:"column:frontend_input;type:varchar(50)" json:"frontend_input,omitempty"`
	FrontendLabel *string `gorm:"column:frontend_label;type:varchar(255)" json:"frontend_label,omitempty"`
}

func (EavAttribute) TableName() string {
	return "eav_attribute"
}

// EavAttributeOption represents the eav_attribute_option table.
type EavAttributeOption struct {
	OptionID    uint   `gorm:"column:option_id;primaryKey;autoIncrement" json:"option_id"`
	AttributeID uint   `gorm:"column:attribute_id;not null;index" json:"attribute_id"`
	SortOrder   uint16 `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
}

func (EavAttributeOption) TableName() string {
	return "eav_attribute_option"
}

// EavAttributeOptionValue represents the eav_attribute_option_value table.
type EavAttributeOptionValue struct {
	ValueID  uint    `gorm:"column:value_id;primaryKey;autoIncrement" json:"value_id"`
	OptionID uint    `gorm:"column:option_id;not null;index" json:"option_id"`
	StoreID  uint16  `gorm:"column:store_id;not null;default:0" json:"store_id"`
	Value    *string `gorm:"column:value;type:varchar(255)" json:"value,omitempty"`
}

func (EavAttributeOptionValue) TableName() string {
	return "eav_attribute_option_value"
}
