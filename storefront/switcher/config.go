// Package switcher is the storefront gallery engine: it holds the color
// state of one product view, filters the media list for the selected color
// and hands the result to a gallery adapter for rendering.
package switcher

import (
	"errors"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// GenericKey is the colorMapping entry of media without a color.
const GenericKey = "null"

// ErrInvalidConfig is returned for a document that is not valid JSON.
var ErrInvalidConfig = errors.New("switcher: invalid gallery config")

// ColorEntry is one colorMapping bucket as media ids.
type ColorEntry struct {
	Label    string `json:"label"`
	Images   []uint `json:"images"`
	Videos   []uint `json:"videos"`
	HasStock *bool  `json:"hasStock,omitempty"`
}

// Config is the gallery document a product page is rendered with. The server
// encodes it with encoding/json; ParseConfig reads it back leniently.
type Config struct {
	Enabled              bool                  `json:"enabled"`
	ColorAttributeID     int                   `json:"colorAttributeId"`
	ColorAttributeCode   string                `json:"colorAttributeCode"`
	ShowGenericImages    bool                  `json:"showGenericImages"`
	StockFilterEnabled   bool                  `json:"stockFilterEnabled"`
	OutOfStockBehavior   string                `json:"outOfStockBehavior"`
	DefaultColorOptionID *int                  `json:"defaultColorOptionId"`
	PreselectColor       bool                  `json:"preselectColor"`
	DeepLinkEnabled      bool                  `json:"deepLinkEnabled"`
	UpdateURLOnSelect    bool                  `json:"updateUrlOnSelect"`
	AvailableColors      []int                 `json:"availableColors"`
	ColorsWithStock      []int                 `json:"colorsWithStock"`
	ColorMapping         map[string]ColorEntry `json:"colorMapping"`
	GalleryAdapter       string                `json:"galleryAdapter"`
}

// Labels returns the label of every available color.
func (c Config) Labels() map[int]string {
	out := make(map[int]string, len(c.AvailableColors))
	for _, id := range c.AvailableColors {
		out[id] = c.ColorMapping[strconv.Itoa(id)].Label
	}
	return out
}

// Media is one item of the page's full gallery. Legacy items carry no ID and
// are matched through their raw color tag.
type Media struct {
	ID       uint   `json:"id"`
	Position int    `json:"position"`
	Kind     string `json:"kind"`
	ColorTag string `json:"colorTag"`
}

// ParseConfig decodes a gallery document. Numbers given as strings are
// accepted and unknown fields ignored.
func ParseConfig(raw []byte) (Config, error) {
	if !gjson.ValidBytes(raw) {
		return Config{}, ErrInvalidConfig
	}
	doc := gjson.ParseBytes(raw)
	cfg := Config{
		Enabled:            doc.Get("enabled").Bool(),
		ColorAttributeID:   int(doc.Get("colorAttributeId").Int()),
		ColorAttributeCode: doc.Get("colorAttributeCode").String(),
		ShowGenericImages:  doc.Get("showGenericImages").Bool(),
		StockFilterEnabled: doc.Get("stockFilterEnabled").Bool(),
		OutOfStockBehavior: doc.Get("outOfStockBehavior").String(),
		PreselectColor:     doc.Get("preselectColor").Bool(),
		DeepLinkEnabled:    doc.Get("deepLinkEnabled").Bool(),
		UpdateURLOnSelect:  doc.Get("updateUrlOnSelect").Bool(),
		AvailableColors:    intList(doc.Get("availableColors")),
		ColorsWithStock:    intList(doc.Get("colorsWithStock")),
		ColorMapping:       make(map[string]ColorEntry),
		GalleryAdapter:     doc.Get("galleryAdapter").String(),
	}
	if def := doc.Get("defaultColorOptionId"); def.Exists() && def.Type != gjson.Null {
		id := int(def.Int())
		cfg.DefaultColorOptionID = &id
	}
	doc.Get("colorMapping").ForEach(func(key, value gjson.Result) bool {
		entry := ColorEntry{
			Label:  value.Get("label").String(),
			Images: uintList(value.Get("images")),
			Videos: uintList(value.Get("videos")),
		}
		if hs := value.Get("hasStock"); hs.Exists() && hs.Type != gjson.Null {
			b := hs.Bool()
			entry.HasStock = &b
		}
		cfg.ColorMapping[key.String()] = entry
		return true
	})
	return cfg, nil
}

// ParseMedia decodes the page's media list and orders it by position.
func ParseMedia(raw []byte) ([]Media, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidConfig
	}
	var out []Media
	gjson.ParseBytes(raw).ForEach(func(_, item gjson.Result) bool {
		out = append(out, Media{
			ID:       uint(item.Get("id").Uint()),
			Position: int(item.Get("position").Int()),
			Kind:     item.Get("kind").String(),
			ColorTag: item.Get("colorTag").String(),
		})
		return true
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func intList(r gjson.Result) []int {
	out := []int{}
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, int(v.Int()))
		return true
	})
	return out
}

func uintList(r gjson.Result) []uint {
	out := []uint{}
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, uint(v.Uint()))
		return true
	})
	return out
}
