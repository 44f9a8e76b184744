package product

// MediaGallery represents catalog_product_entity_media_gallery: one physical file.
type MediaGallery struct {
	ValueID     uint   `gorm:"column:value_id;primaryKey;autoIncrement" json:"value_id"`
	AttributeID uint   `gorm:"column:attribute_id;not null" json:"attribute_id"`
	Value       string `gorm:"column:value;type:varchar(255)" json:"value"`
	MediaType   string `gorm:"column:media_type;type:varchar(32);not null;default:image" json:"media_type"`
	Disabled    uint8  `gorm:"column:disabled;type:smallint unsigned;not null;default:0" json:"disabled"`
}

func (MediaGallery) TableName() string {
	return "catalog_product_entity_media_gallery"
}

// MediaGalleryValue represents catalog_product_entity_media_gallery_value: the
// store-scoped label, position and color tag of a file on a product.
type MediaGalleryValue struct {
	RecordID             uint    `gorm:"column:record_id;primaryKey;autoIncrement" json:"record_id"`
	ValueID              uint    `gorm:"column:value_id;not null;index" json:"value_id"`
	StoreID              uint16  `gorm:"column:store_id;not null;default:0" json:"store_id"`
	EntityID             uint    `gorm:"column:entity_id;not null;index" json:"entity_id"`
	Label                *string `gorm:"column:label;type:varchar(255)" json:"label,omitempty"`
	Position             *int    `gorm:"column:position" json:"position,omitempty"`
	Disabled             uint8   `gorm:"column:disabled;type:smallint unsigned;not null;default:0" json:"disabled"`
	AssociatedAttributes *string `gorm:"column:associated_attributes;type:varchar(255)" json:"associated_attributes,omitempty"`
}

func (MediaGalleryValue) TableName() string {
	return "catalog_product_entity_media_gallery_value"
}

// MediaGalleryValueToEntity links a media file to a product.
type MediaGalleryValueToEntity struct {
	ValueID  uint `gorm:"column:value_id;primaryKey;autoIncrement:false" json:"value_id"`
	EntityID uint `gorm:"column:entity_id;primaryKey;autoIncrement:false" json:"entity_id"`
}

func (MediaGalleryValueToEntity) TableName() string {
	return "catalog_product_entity_media_gallery_value_to_entity"
}
