package switcher

import (
	"net/url"
	"strconv"
	"strings"

	"gallery.GO/core/slug"
)

// ColorParam is the query or fragment parameter carrying the deep-linked color.
const ColorParam = "color"

// ColorFromURL returns the color parameter of rawURL, query before fragment.
func ColorFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if v := strings.TrimSpace(u.Query().Get(ColorParam)); v != "" {
		return v
	}
	frag, err := url.ParseQuery(strings.TrimPrefix(u.Fragment, "?"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(frag.Get(ColorParam))
}

// WithColor rewrites the color query parameter of rawURL. A nil optionID
// removes it. The label slug is written when the color has a label.
func WithColor(rawURL string, cfg Config, optionID *int) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if optionID == nil {
		q.Del(ColorParam)
	} else {
		value := slug.Make(cfg.ColorMapping[strconv.Itoa(*optionID)].Label)
		if value == "" {
			value = strconv.Itoa(*optionID)
		}
		q.Set(ColorParam, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// DefaultColor picks the color a page opens with, first satisfied rule wins:
// the deep-linked color, the product's manual default, the first available
// color with stock (stock filter only) and finally the first available color.
// Nil means no filter.
func (c Config) DefaultColor(rawURL string) *int {
	if !c.Enabled || (!c.PreselectColor && !c.DeepLinkEnabled) {
		return nil
	}
	available := make(map[int]struct{}, len(c.AvailableColors))
	for _, id := range c.AvailableColors {
		available[id] = struct{}{}
	}
	withStock := make(map[int]struct{}, len(c.ColorsWithStock))
	for _, id := range c.ColorsWithStock {
		withStock[id] = struct{}{}
	}
	hasStock := func(id int) bool {
		if !c.StockFilterEnabled {
			return true
		}
		_, ok := withStock[id]
		return ok
	}

	if c.DeepLinkEnabled {
		if value := ColorFromURL(rawURL); value != "" {
			if id, ok := slug.Resolve(value, c.Labels()); ok && hasStock(id) {
				return &id
			}
		}
	}
	if !c.PreselectColor {
		return nil
	}
	if c.DefaultColorOptionID != nil {
		if _, ok := available[*c.DefaultColorOptionID]; ok {
			id := *c.DefaultColorOptionID
			return &id
		}
	}
	if c.StockFilterEnabled {
		for _, id := range c.AvailableColors {
			if _, ok := withStock[id]; ok {
				return &id
			}
		}
	}
	if len(c.AvailableColors) > 0 {
		id := c.AvailableColors[0]
		return &id
	}
	return nil
}
