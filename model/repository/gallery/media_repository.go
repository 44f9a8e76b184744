package gallery

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	entity "gallery.GO/model/entity"
	productEntity "gallery.GO/model/entity/product"
	"gallery.GO/model/gallery"
)

// MediaTypeVideo is the media_type value Magento stores for videos.
const MediaTypeVideo = "external-video"

// MediaRepository is the gorm implementation of gallery.MediaStore.
type MediaRepository struct {
	db *gorm.DB
}

var _ gallery.MediaStore = (*MediaRepository)(nil)

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

type mediaRow struct {
	ValueID              uint
	Value                string
	MediaType            string
	GalleryDisabled      uint8
	StoreID              uint16
	Label                *string
	Position             *int
	Disabled             uint8
	AssociatedAttributes *string
}

func (row mediaRow) record() gallery.MediaRecord {
	rec := gallery.MediaRecord{
		ID:      row.ValueID,
		File:    row.Value,
		Kind:    gallery.KindImage,
		Enabled: row.GalleryDisabled == 0 && row.Disabled == 0,
		StoreID: row.StoreID,
	}
	if row.MediaType == MediaTypeVideo {
		rec.Kind = gallery.KindVideo
	}
	if row.Position != nil {
		rec.Position = *row.Position
	}
	if row.Label != nil {
		rec.Label = *row.Label
	}
	if row.AssociatedAttributes != nil {
		rec.ColorTag = *row.AssociatedAttributes
	}
	return rec
}

func (r *MediaRepository) ListMediaRecords(ctx context.Context, productID uint, storeID uint16) ([]gallery.MediaRecord, error) {
	var rows []mediaRow
	err := r.db.WithContext(ctx).
		Table("catalog_product_entity_media_gallery_value v").
		Select("g.value_id, g.value, g.media_type, g.disabled AS gallery_disabled, v.store_id, v.label, v.position, v.disabled, v.associated_attributes").
		Joins("JOIN catalog_product_entity_media_gallery g ON g.value_id = v.value_id").
		Where("v.entity_id = ? AND v.store_id IN ?", productID, []uint16{0, storeID}).
		Order("v.position, g.value_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("media of product %d: %w", productID, err)
	}
	out := make([]gallery.MediaRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out, nil
}

func (r *MediaRepository) MediaFiles(ctx context.Context, productID uint) ([]string, error) {
	var files []string
	err := r.db.WithContext(ctx).
		Table("catalog_product_entity_media_gallery_value v").
		Joins("JOIN catalog_product_entity_media_gallery g ON g.value_id = v.value_id").
		Where("v.entity_id = ?", productID).
		Distinct().
		Order("g.value").
		Pluck("g.value", &files).Error
	if err != nil {
		return nil, fmt.Errorf("media files of product %d: %w", productID, err)
	}
	return files, nil
}

func (r *MediaRepository) SetColorTag(ctx context.Context, productID, mediaID uint, tag string) error {
	var value *string
	if tag != "" {
		value = &tag
	}
	res := r.db.WithContext(ctx).
		Model(&productEntity.MediaGalleryValue{}).
		Where("value_id = ? AND entity_id = ?", mediaID, productID).
		Update("associated_attributes", value)
	if res.Error != nil {
		return fmt.Errorf("set color tag on media %d: %w", mediaID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("media %d of product %d: %w", mediaID, productID, gorm.ErrRecordNotFound)
	}
	return nil
}

// LinkMedia creates a new gallery row for the same file and attaches it to the
// child with a default scope value row.
func (r *MediaRepository) LinkMedia(ctx context.Context, childID uint, src gallery.MediaRecord, tag string) (gallery.MediaRecord, error) {
	db := r.db.WithContext(ctx)
	var source productEntity.MediaGallery
	if err := db.First(&source, src.ID).Error; err != nil {
		return gallery.MediaRecord{}, fmt.Errorf("source media %d: %w", src.ID, err)
	}
	copyRow := productEntity.MediaGallery{
		AttributeID: source.AttributeID,
		Value:       source.Value,
		MediaType:   source.MediaType,
	}
	if err := db.Create(&copyRow).Error; err != nil {
		return gallery.MediaRecord{}, fmt.Errorf("copy media %d: %w", src.ID, err)
	}
	if err := db.Create(&productEntity.MediaGalleryValueToEntity{ValueID: copyRow.ValueID, EntityID: childID}).Error; err != nil {
		return gallery.MediaRecord{}, fmt.Errorf("link media %d to %d: %w", copyRow.ValueID, childID, err)
	}
	value := productEntity.MediaGalleryValue{
		ValueID:  copyRow.ValueID,
		StoreID:  0,
		EntityID: childID,
		Position: &src.Position,
	}
	if src.Label != "" {
		value.Label = &src.Label
	}
	if tag != "" {
		value.AssociatedAttributes = &tag
	}
	if err := db.Create(&value).Error; err != nil {
		return gallery.MediaRecord{}, fmt.Errorf("media value for %d: %w", childID, err)
	}
	return gallery.MediaRecord{
		ID:       copyRow.ValueID,
		File:     copyRow.Value,
		Kind:     src.Kind,
		Position: src.Position,
		Enabled:  true,
		ColorTag: tag,
		Label:    src.Label,
	}, nil
}

// DeleteAllMedia unlinks every media record of the product and garbage
// collects gallery rows no other product references.
func (r *MediaRepository) DeleteAllMedia(ctx context.Context, productID uint) (int, error) {
	db := r.db.WithContext(ctx)
	var ids []uint
	if err := db.Model(&productEntity.MediaGalleryValueToEntity{}).
		Where("entity_id = ?", productID).
		Pluck("value_id", &ids).Error; err != nil {
		return 0, fmt.Errorf("media links of %d: %w", productID, err)
	}
	var valueIDs []uint
	if err := db.Model(&productEntity.MediaGalleryValue{}).
		Where("entity_id = ?", productID).
		Distinct().
		Pluck("value_id", &valueIDs).Error; err != nil {
		return 0, fmt.Errorf("media values of %d: %w", productID, err)
	}
	ids = union(ids, valueIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	if err := db.Where("entity_id = ?", productID).Delete(&productEntity.MediaGalleryValue{}).Error; err != nil {
		return 0, fmt.Errorf("delete media values of %d: %w", productID, err)
	}
	if err := db.Where("entity_id = ?", productID).Delete(&productEntity.MediaGalleryValueToEntity{}).Error; err != nil {
		return 0, fmt.Errorf("delete media links of %d: %w", productID, err)
	}
	orphans := db.Model(&productEntity.MediaGalleryValueToEntity{}).Select("value_id")
	if err := db.Where("value_id IN ? AND value_id NOT IN (?)", ids, orphans).
		Delete(&productEntity.MediaGallery{}).Error; err != nil {
		return 0, fmt.Errorf("collect media of %d: %w", productID, err)
	}
	return len(ids), nil
}

func union(a, b []uint) []uint {
	seen := make(map[uint]struct{}, len(a)+len(b))
	out := make([]uint, 0, len(a)+len(b))
	for _, list := range [][]uint{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func (r *MediaRepository) roleAttributeIDs(ctx context.Context, roles []string) ([]uint, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.EavAttribute{}).
		Where("attribute_code IN ? AND entity_type_id = ?", roles, 4).
		Pluck("attribute_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("role attributes %v: %w", roles, err)
	}
	return ids, nil
}

func (r *MediaRepository) ResetRoleAttributes(ctx context.Context, productID uint, roles []string) error {
	ids, err := r.roleAttributeIDs(ctx, roles)
	if err != nil || len(ids) == 0 {
		return err
	}
	err = r.db.WithContext(ctx).
		Where("entity_id = ? AND attribute_id IN ?", productID, ids).
		Delete(&productEntity.ProductVarchar{}).Error
	if err != nil {
		return fmt.Errorf("reset roles of %d: %w", productID, err)
	}
	return nil
}

func (r *MediaRepository) AssignRoles(ctx context.Context, productID uint, file string, roles []string) error {
	ids, err := r.roleAttributeIDs(ctx, roles)
	if err != nil || len(ids) == 0 {
		return err
	}
	rows := make([]productEntity.ProductVarchar, len(ids))
	for i, id := range ids {
		rows[i] = productEntity.ProductVarchar{AttributeID: id, StoreID: 0, EntityID: productID, Value: &file}
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attribute_id"}, {Name: "store_id"}, {Name: "entity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("assign roles to %d: %w", productID, err)
	}
	return nil
}

func (r *MediaRepository) Touch(ctx context.Context, productID uint) error {
	err := r.db.WithContext(ctx).Model(&productEntity.Product{}).
		Where("entity_id = ?", productID).
		Update("updated_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("touch %d: %w", productID, err)
	}
	return nil
}

// WithinTx runs fn in a transaction; called inside another WithinTx it uses a savepoint.
func (r *MediaRepository) WithinTx(ctx context.Context, fn func(gallery.MediaStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&MediaRepository{db: tx})
	})
}
