package switcher

import (
	"sort"
	"strconv"

	"gallery.GO/core/colortag"
)

// allowedIDs builds the media id set shown for optionID; nil means every
// mapped color.
func allowedIDs(cfg Config, optionID *int) map[uint]struct{} {
	set := make(map[uint]struct{})
	add := func(e ColorEntry) {
		for _, id := range e.Images {
			set[id] = struct{}{}
		}
		for _, id := range e.Videos {
			set[id] = struct{}{}
		}
	}
	if optionID == nil {
		for key, e := range cfg.ColorMapping {
			if key != GenericKey {
				add(e)
			}
		}
	} else if e, ok := cfg.ColorMapping[strconv.Itoa(*optionID)]; ok {
		add(e)
	}
	if cfg.ShowGenericImages {
		add(cfg.ColorMapping[GenericKey])
	}
	return set
}

// legacyMatch decides items without an id from their raw tag.
func legacyMatch(cfg Config, tag string, optionID *int) bool {
	ids := colortag.Parse(tag, cfg.ColorAttributeID)
	if len(ids) == 0 {
		return cfg.ShowGenericImages
	}
	if optionID == nil {
		for _, id := range ids {
			if _, ok := cfg.ColorMapping[strconv.Itoa(id)]; ok {
				return true
			}
		}
		return false
	}
	return colortag.Matches(tag, cfg.ColorAttributeID, *optionID)
}

// Filter returns the media shown for optionID, ordered by position. A
// disabled config shows everything.
func Filter(cfg Config, media []Media, optionID *int) []Media {
	out := make([]Media, 0, len(media))
	if !cfg.Enabled {
		out = append(out, media...)
	} else {
		allowed := allowedIDs(cfg, optionID)
		for _, m := range media {
			if m.ID == 0 {
				if legacyMatch(cfg, m.ColorTag, optionID) {
					out = append(out, m)
				}
				continue
			}
			if _, ok := allowed[m.ID]; ok {
				out = append(out, m)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
