package colorgallery

import (
	"context"
	"time"

	"gallery.GO/model/gallery"
)

// AttributeCatalog resolves EAV attribute metadata.
type AttributeCatalog interface {
	IDForCode(ctx context.Context, code string) (int, error)
	VariationAxesFor(ctx context.Context, productID uint) ([]string, error)
}

// VariantGraph exposes a configurable product's children and color options.
type VariantGraph interface {
	Children(ctx context.Context, productID uint, attributeCode string, storeID uint16) ([]gallery.Child, error)
	Options(ctx context.Context, attributeID int, storeID uint16) ([]gallery.Option, error)
	DefaultColor(ctx context.Context, productID uint, storeID uint16) (int, bool, error)
}

// ProductLister finds configurable products for automatic propagation.
type ProductLister interface {
	ConfigurableProducts(ctx context.Context, since time.Time) ([]uint, error)
}

// SalabilityProvider answers whether each child can be sold, keyed by child id.
type SalabilityProvider interface {
	Name() string
	Salable(ctx context.Context, children []gallery.Child) (map[uint]bool, error)
}
