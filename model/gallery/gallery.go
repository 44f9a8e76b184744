// Package gallery holds the value types shared by the color gallery
// repositories, services and transport layers.
package gallery

// MediaKind distinguishes images from videos in a gallery.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// GenericKey is the ColorMediaMap bucket for media without a color tag.
const GenericKey = "null"

// MediaRecord is one gallery entry of a product in a given store scope.
type MediaRecord struct {
	ID       uint      `json:"id"`
	File     string    `json:"file"`
	Kind     MediaKind `json:"kind"`
	Position int       `json:"position"`
	Enabled  bool      `json:"enabled"`
	ColorTag string    `json:"color_tag,omitempty"`
	Label    string    `json:"label,omitempty"`
	StoreID  uint16    `json:"store_id"`
}

// Child is a variant of a configurable product. ColorOptionID is 0 when the
// child carries no value for the selector attribute.
type Child struct {
	ID            uint   `json:"id"`
	SKU           string `json:"sku"`
	ColorOptionID int    `json:"color_option_id"`
}

// Option is one selectable value of an EAV attribute.
type Option struct {
	ID          int    `json:"id"`
	AttributeID int    `json:"attribute_id"`
	Label       string `json:"label"`
	SortOrder   int    `json:"sort_order"`
}

// Bucket holds the media of one color (or of the generic bucket).
// HasStock is set only when out-of-stock colors are dimmed.
type Bucket struct {
	Images   []MediaRecord `json:"images"`
	Videos   []MediaRecord `json:"videos"`
	HasStock *bool         `json:"has_stock,omitempty"`
}

// Len returns the number of media in the bucket.
func (b Bucket) Len() int {
	return len(b.Images) + len(b.Videos)
}

// Records returns images followed by videos.
func (b Bucket) Records() []MediaRecord {
	out := make([]MediaRecord, 0, b.Len())
	out = append(out, b.Images...)
	return append(out, b.Videos...)
}

// ColorMediaMap groups media by color option id (decimal string) or GenericKey.
type ColorMediaMap map[string]Bucket

// Generic returns the generic bucket, empty when absent.
func (m ColorMediaMap) Generic() Bucket {
	return m[GenericKey]
}
