package product

import "time"

const (
	TypeSimple       = "simple"
	TypeConfigurable = "configurable"
)

// Product represents the catalog_product_entity table.
type Product struct {
	EntityID       uint      `gorm:"column:entity_id;primaryKey;autoIncrement" json:"entity_id"`
	AttributeSetID uint16    `gorm:"column:attribute_set_id;not null;default:4" json:"attribute_set_id"`
	TypeID         string    `gorm:"column:type_id;type:varchar(32);not null;default:simple" json:"type_id"`
	SKU            string    `gorm:"column:sku;type:varchar(64);not null;index" json:"sku"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "catalog_product_entity"
}

// ProductInt represents catalog_product_entity_int (select attributes such as color).
type ProductInt struct {
	ValueID     uint   `gorm:"column:value_id;primaryKey;autoIncrement" json:"value_id"`
	AttributeID uint   `gorm:"column:attribute_id;not null;uniqueIndex:idx_product_int_eav" json:"attribute_id"`
	StoreID     uint16 `gorm:"column:store_id;not null;default:0;uniqueIndex:idx_product_int_eav" json:"store_id"`
	EntityID    uint   `gorm:"column:entity_id;not null;uniqueIndex:idx_product_int_eav" json:"entity_id"`
	Value       *int   `gorm:"column:value" json:"value,omitempty"`
}

func (ProductInt) TableName() string {
	return "catalog_product_entity_int"
}

// ProductVarchar represents catalog_product_entity_varchar (image roles live here).
type ProductVarchar struct {
	ValueID     uint    `gorm:"column:value_id;primaryKey;autoIncrement" json:"value_id"`
	AttributeID uint    `gorm:"column:attribute_id;not null;uniqueIndex:idx_product_varchar_eav" json:"attribute_id"`
	StoreID     uint16  `gorm:"column:store_id;not null;default:0;uniqueIndex:idx_product_varchar_eav" json:"store_id"`
	EntityID    uint    `gorm:"column:entity_id;not null;uniqueIndex:idx_product_varchar_eav" json:"entity_id"`
	Value       *string `gorm:"column:value;type:varchar(255)" json:"value,omitempty"`
}

func (ProductVarchar) TableName() string {
	return "catalog_product_entity_varchar"
}

// SuperAttribute represents catalog_product_super_attribute: the variation
// axes of a configurable product.
type SuperAttribute struct {
	ProductSuperAttributeID uint   `gorm:"column:product_super_attribute_id;primaryKey;autoIncrement" json:"product_super_attribute_id"`
	ProductID               uint   `gorm:"column:product_id;not null;index" json:"product_id"`
	AttributeID             uint   `gorm:"column:attribute_id;not null" json:"attribute_id"`
	Position                uint16 `gorm:"column:position;not null;default:0" json:"position"`
}

func (SuperAttribute) TableName() string {
	return "catalog_product_super_attribute"
}

// SuperLink represents catalog_product_super_link: parent to child relation.
type SuperLink struct {
	LinkID    uint `gorm:"column:link_id;primaryKey;autoIncrement" json:"link_id"`
	ProductID uint `gorm:"column:product_id;not null;index" json:"product_id"`
	ParentID  uint `gorm:"column:parent_id;not null;index" json:"parent_id"`
}

func (SuperLink) TableName() string {
	return "catalog_product_super_link"
}
