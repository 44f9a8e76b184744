package graphql

import (
	"sort"
	"strconv"

	"gallery.GO/storefront/switcher"
)

// ColorGallery is the GraphQL view of a gallery document. colorMapping becomes
// an ordered list instead of an object keyed by option id.
type ColorGallery struct {
	Enabled              bool
	ColorAttributeID     int32
	ColorAttributeCode   string
	ShowGenericImages    bool
	StockFilterEnabled   bool
	OutOfStockBehavior   string
	DefaultColorOptionID *int32
	PreselectColor       bool
	DeepLinkEnabled      bool
	UpdateURLOnSelect    bool
	AvailableColors      []int32
	ColorsWithStock      []int32
	ColorMapping         []*ColorBucket
	GalleryAdapter       string
}

type ColorBucket struct {
	Key      string
	Label    string
	Images   []int32
	Videos   []int32
	HasStock *bool
}

// FromConfig converts cfg. Buckets follow availableColors, then any other
// option keys in numeric order, then the generic bucket.
func FromConfig(cfg switcher.Config) *ColorGallery {
	g := &ColorGallery{
		Enabled:            cfg.Enabled,
		ColorAttributeID:   int32(cfg.ColorAttributeID),
		ColorAttributeCode: cfg.ColorAttributeCode,
		ShowGenericImages:  cfg.ShowGenericImages,
		StockFilterEnabled: cfg.StockFilterEnabled,
		OutOfStockBehavior: cfg.OutOfStockBehavior,
		PreselectColor:     cfg.PreselectColor,
		DeepLinkEnabled:    cfg.DeepLinkEnabled,
		UpdateURLOnSelect:  cfg.UpdateURLOnSelect,
		AvailableColors:    int32s(cfg.AvailableColors),
		ColorsWithStock:    int32s(cfg.ColorsWithStock),
		ColorMapping:       []*ColorBucket{},
		GalleryAdapter:     cfg.GalleryAdapter,
	}
	if cfg.DefaultColorOptionID != nil {
		id := int32(*cfg.DefaultColorOptionID)
		g.DefaultColorOptionID = &id
	}

	seen := make(map[string]bool, len(cfg.ColorMapping))
	add := func(key string) {
		e, ok := cfg.ColorMapping[key]
		if !ok || seen[key] {
			return
		}
		seen[key] = true
		g.ColorMapping = append(g.ColorMapping, &ColorBucket{
			Key:      key,
			Label:    e.Label,
			Images:   ids(e.Images),
			Videos:   ids(e.Videos),
			HasStock: e.HasStock,
		})
	}
	for _, id := range cfg.AvailableColors {
		add(strconv.Itoa(id))
	}
	var rest []int
	for key := range cfg.ColorMapping {
		if id, err := strconv.Atoi(key); err == nil && !seen[key] {
			rest = append(rest, id)
		}
	}
	sort.Ints(rest)
	for _, id := range rest {
		add(strconv.Itoa(id))
	}
	add(switcher.GenericKey)
	return g
}

func int32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func ids(in []uint) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}
