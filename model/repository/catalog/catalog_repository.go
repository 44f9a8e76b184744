package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	entity "gallery.GO/model/entity"
	productEntity "gallery.GO/model/entity/product"
	"gallery.GO/model/gallery"
)

// ProductEntityTypeID is the eav_entity_type id of catalog_product.
const ProductEntityTypeID = 4

// DefaultColorAttribute is the product attribute holding a manual default color option.
const DefaultColorAttribute = "rollpix_default_color"

var ErrAttributeNotFound = errors.New("attribute not found")

// CatalogRepository reads EAV metadata and the configurable product graph.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// IDForCode returns the numeric id of a product attribute code.
func (r *CatalogRepository) IDForCode(ctx context.Context, code string) (int, error) {
	var attr entity.EavAttribute
	err := r.db.WithContext(ctx).
		Where("attribute_code = ? AND entity_type_id = ?", code, ProductEntityTypeID).
		First(&attr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrAttributeNotFound, code)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup attribute %s: %w", code, err)
	}
	return int(attr.AttributeID), nil
}

// VariationAxesFor returns the attribute codes a configurable product varies on,
// in super attribute position order.
func (r *CatalogRepository) VariationAxesFor(ctx context.Context, productID uint) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Table("catalog_product_super_attribute sa").
		Select("a.attribute_code").
		Joins("JOIN eav_attribute a ON a.attribute_id = sa.attribute_id").
		Where("sa.product_id = ?", productID).
		Order("sa.position, sa.product_super_attribute_id").
		Pluck("a.attribute_code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("variation axes of %d: %w", productID, err)
	}
	return codes, nil
}

// Children returns the variants of a configurable product with each child's
// option id for attributeCode. An empty or unknown code yields children
// without a color value.
func (r *CatalogRepository) Children(ctx context.Context, productID uint, attributeCode string, storeID uint16) ([]gallery.Child, error) {
	var rows []struct {
		EntityID uint
		SKU      string
	}
	err := r.db.WithContext(ctx).
		Table("catalog_product_super_link l").
		Select("p.entity_id, p.sku").
		Joins("JOIN catalog_product_entity p ON p.entity_id = l.product_id").
		Where("l.parent_id = ?", productID).
		Order("p.entity_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("children of %d: %w", productID, err)
	}
	children := make([]gallery.Child, len(rows))
	ids := make([]uint, len(rows))
	for i, row := range rows {
		children[i] = gallery.Child{ID: row.EntityID, SKU: row.SKU}
		ids[i] = row.EntityID
	}
	if attributeCode == "" || len(children) == 0 {
		return children, nil
	}
	attrID, err := r.IDForCode(ctx, attributeCode)
	if errors.Is(err, ErrAttributeNotFound) {
		return children, nil
	}
	if err != nil {
		return nil, err
	}
	values, err := r.intValues(ctx, uint(attrID), ids, storeID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		children[i].ColorOptionID = values[children[i].ID]
	}
	return children, nil
}

// intValues loads catalog_product_entity_int values, preferring the store row
// over the default scope row.
func (r *CatalogRepository) intValues(ctx context.Context, attributeID uint, entityIDs []uint, storeID uint16) (map[uint]int, error) {
	var rows []productEntity.ProductInt
	err := r.db.WithContext(ctx).
		Where("attribute_id = ? AND entity_id IN ? AND store_id IN ?", attributeID, entityIDs, []uint16{0, storeID}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("int values of attribute %d: %w", attributeID, err)
	}
	out := make(map[uint]int, len(entityIDs))
	scoped := make(map[uint]bool, len(entityIDs))
	for _, row := range rows {
		if row.Value == nil {
			continue
		}
		if row.StoreID == storeID && storeID != 0 {
			out[row.EntityID] = *row.Value
			scoped[row.EntityID] = true
			continue
		}
		if !scoped[row.EntityID] {
			out[row.EntityID] = *row.Value
		}
	}
	return out, nil
}

// Options returns every option of an attribute with its store label (admin
// label when the store has none), ordered by sort order.
func (r *CatalogRepository) Options(ctx context.Context, attributeID int, storeID uint16) ([]gallery.Option, error) {
	var opts []entity.EavAttributeOption
	if err := r.db.WithContext(ctx).
		Where("attribute_id = ?", attributeID).
		Order("sort_order, option_id").
		Find(&opts).Error; err != nil {
		return nil, fmt.Errorf("options of attribute %d: %w", attributeID, err)
	}
	if len(opts) == 0 {
		return nil, nil
	}
	ids := make([]uint, len(opts))
	for i, o := range opts {
		ids[i] = o.OptionID
	}
	var values []entity.EavAttributeOptionValue
	if err := r.db.WithContext(ctx).
		Where("option_id IN ? AND store_id IN ?", ids, []uint16{0, storeID}).
		Find(&values).Error; err != nil {
		return nil, fmt.Errorf("option labels of attribute %d: %w", attributeID, err)
	}
	labels := make(map[uint]string, len(values))
	for _, v := range values {
		if v.Value == nil {
			continue
		}
		if _, ok := labels[v.OptionID]; ok && v.StoreID == 0 {
			continue
		}
		labels[v.OptionID] = *v.Value
	}
	out := make([]gallery.Option, len(opts))
	for i, o := range opts {
		out[i] = gallery.Option{
			ID:          int(o.OptionID),
			AttributeID: attributeID,
			Label:       labels[o.OptionID],
			SortOrder:   int(o.SortOrder),
		}
	}
	return out, nil
}

// DefaultColor returns the product's manual default color option, if set.
func (r *CatalogRepository) DefaultColor(ctx context.Context, productID uint, storeID uint16) (int, bool, error) {
	attrID, err := r.IDForCode(ctx, DefaultColorAttribute)
	if errors.Is(err, ErrAttributeNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	values, err := r.intValues(ctx, uint(attrID), []uint{productID}, storeID)
	if err != nil {
		return 0, false, err
	}
	v, ok := values[productID]
	return v, ok && v > 0, nil
}

// ConfigurableProducts returns ids of configurable products updated after since.
// A zero since returns all of them.
func (r *CatalogRepository) ConfigurableProducts(ctx context.Context, since time.Time) ([]uint, error) {
	q := r.db.WithContext(ctx).Model(&productEntity.Product{}).Where("type_id = ?", productEntity.TypeConfigurable)
	if !since.IsZero() {
		q = q.Where("updated_at > ?", since)
	}
	var ids []uint
	if err := q.Order("entity_id").Pluck("entity_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("configurable products: %w", err)
	}
	return ids, nil
}
