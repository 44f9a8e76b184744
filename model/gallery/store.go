package gallery

import "context"

// MediaStore is the catalog media collaborator used by propagation, cleanup
// and tag migration. Implementations must be safe for use by one goroutine
// per product.
type MediaStore interface {
	// ListMediaRecords returns the product's gallery rows for the store and
	// for the default scope (store 0), disabled rows included.
	ListMediaRecords(ctx context.Context, productID uint, storeID uint16) ([]MediaRecord, error)
	// MediaFiles returns the distinct files linked to the product in any scope.
	MediaFiles(ctx context.Context, productID uint) ([]string, error)
	// SetColorTag stores tag on the product's media record; "" clears it.
	SetColorTag(ctx context.Context, productID, mediaID uint, tag string) error
	// LinkMedia attaches an independent copy of src to the child and returns it.
	LinkMedia(ctx context.Context, childID uint, src MediaRecord, tag string) (MediaRecord, error)
	// DeleteAllMedia removes every media record of the product and returns how
	// many were removed. Files still referenced by other products are kept.
	DeleteAllMedia(ctx context.Context, productID uint) (int, error)
	// ResetRoleAttributes unsets the given image roles on the product.
	ResetRoleAttributes(ctx context.Context, productID uint, roles []string) error
	// AssignRoles points the given image roles at file.
	AssignRoles(ctx context.Context, productID uint, file string, roles []string) error
	// Touch marks the product as saved.
	Touch(ctx context.Context, productID uint) error
	// WithinTx runs fn atomically. Nested calls roll back independently.
	WithinTx(ctx context.Context, fn func(MediaStore) error) error
}
