package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gallery.GO/model/gallery"
)

// MSIRepository answers salability from multi-source inventory: a child is
// salable when its quantity over enabled sources with status 1 is positive.
type MSIRepository struct {
	db *gorm.DB
}

func NewMSIRepository(db *gorm.DB) *MSIRepository {
	return &MSIRepository{db: db}
}

// ProbeMSI reports whether the multi-source inventory tables exist.
func ProbeMSI(db *gorm.DB) bool {
	m := db.Migrator()
	return m.HasTable("inventory_source_item") && m.HasTable("inventory_source")
}

func (r *MSIRepository) Name() string { return "msi" }

// Salable returns salability keyed by child id.
func (r *MSIRepository) Salable(ctx context.Context, children []gallery.Child) (map[uint]bool, error) {
	out := make(map[uint]bool, len(children))
	if len(children) == 0 {
		return out, nil
	}
	bySKU := make(map[string][]uint, len(children))
	skus := make([]string, 0, len(children))
	for _, c := range children {
		if _, ok := bySKU[c.SKU]; !ok {
			skus = append(skus, c.SKU)
		}
		bySKU[c.SKU] = append(bySKU[c.SKU], c.ID)
		out[c.ID] = false
	}

	rows, err := r.db.WithContext(ctx).
		Table("inventory_source_item isi").
		Select("isi.sku, isi.quantity").
		Joins("JOIN inventory_source s ON s.source_code = isi.source_code").
		Where("s.enabled = 1 AND isi.status = 1 AND isi.sku IN ?", skus).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("msi quantities: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal, len(skus))
	for rows.Next() {
		var sku string
		var qty decimal.Decimal
		if err := rows.Scan(&sku, &qty); err != nil {
			return nil, fmt.Errorf("msi quantities: %w", err)
		}
		totals[sku] = totals[sku].Add(qty)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msi quantities: %w", err)
	}
	for sku, total := range totals {
		if !total.IsPositive() {
			continue
		}
		for _, id := range bySKU[sku] {
			out[id] = true
		}
	}
	return out, nil
}

// LegacyRepository answers salability from cataloginventory_stock_item.
type LegacyRepository struct {
	db      *gorm.DB
	stockID uint16
}

func NewLegacyRepository(db *gorm.DB) *LegacyRepository {
	return &LegacyRepository{db: db, stockID: 1}
}

func (r *LegacyRepository) Name() string { return "legacy" }

// Salable marks a child salable when it is in stock and either does not
// manage stock or has more than its minimum quantity.
func (r *LegacyRepository) Salable(ctx context.Context, children []gallery.Child) (map[uint]bool, error) {
	out := make(map[uint]bool, len(children))
	if len(children) == 0 {
		return out, nil
	}
	ids := make([]uint, len(children))
	for i, c := range children {
		ids[i] = c.ID
		out[c.ID] = false
	}

	rows, err := r.db.WithContext(ctx).
		Table("cataloginventory_stock_item").
		Select("product_id, qty, min_qty, is_in_stock, manage_stock, use_config_manage_stock").
		Where("product_id IN ? AND stock_id = ?", ids, r.stockID).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("stock items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID                  uint
			qty, minQty                decimal.NullDecimal
			inStock, manage, useConfig uint16
		)
		if err := rows.Scan(&productID, &qty, &minQty, &inStock, &manage, &useConfig); err != nil {
			return nil, fmt.Errorf("stock items: %w", err)
		}
		if inStock != 1 {
			continue
		}
		managed := manage == 1 || useConfig == 1
		if !managed || qty.Decimal.GreaterThan(minQty.Decimal) {
			out[productID] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stock items: %w", err)
	}
	return out, nil
}
