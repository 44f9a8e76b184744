package colorgallery

import (
	"sort"
	"strconv"

	"gallery.GO/core/colortag"
	"gallery.GO/model/gallery"
)

// SelectScoped keeps one row per media id: the storeID row when present,
// otherwise the default scope row. Disabled records are dropped.
func SelectScoped(records []gallery.MediaRecord, storeID uint16) []gallery.MediaRecord {
	chosen := make(map[uint]int, len(records))
	out := make([]gallery.MediaRecord, 0, len(records))
	for _, rec := range records {
		if rec.StoreID != 0 && rec.StoreID != storeID {
			continue
		}
		idx, seen := chosen[rec.ID]
		if !seen {
			chosen[rec.ID] = len(out)
			out = append(out, rec)
			continue
		}
		if rec.StoreID == storeID && out[idx].StoreID != storeID {
			out[idx] = rec
		}
	}
	enabled := out[:0]
	for _, rec := range out {
		if rec.Enabled {
			enabled = append(enabled, rec)
		}
	}
	return enabled
}

// BuildMapping groups records by the color options their tag assigns for
// attributeID. A record tagged for several options is filed under each of
// them; untagged records go to the generic bucket.
func BuildMapping(attributeID int, records []gallery.MediaRecord) gallery.ColorMediaMap {
	m := make(gallery.ColorMediaMap)
	file := func(key string, rec gallery.MediaRecord) {
		b := m[key]
		if rec.Kind == gallery.KindVideo {
			b.Videos = append(b.Videos, rec)
		} else {
			b.Images = append(b.Images, rec)
		}
		m[key] = b
	}
	for _, rec := range records {
		ids := colortag.Parse(rec.ColorTag, attributeID)
		if len(ids) == 0 {
			file(gallery.GenericKey, rec)
			continue
		}
		for _, id := range ids {
			file(strconv.Itoa(id), rec)
		}
	}
	for key, b := range m {
		sortByPosition(b.Images)
		sortByPosition(b.Videos)
		m[key] = b
	}
	return m
}

func sortByPosition(recs []gallery.MediaRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Position < recs[j].Position })
}

// UsedOptionIDs returns the distinct color options carried by children, in
// child order.
func UsedOptionIDs(children []gallery.Child) []int {
	seen := make(map[int]struct{}, len(children))
	out := make([]int, 0, len(children))
	for _, c := range children {
		if c.ColorOptionID == 0 {
			continue
		}
		if _, ok := seen[c.ColorOptionID]; ok {
			continue
		}
		seen[c.ColorOptionID] = struct{}{}
		out = append(out, c.ColorOptionID)
	}
	return out
}

// ColorOptionLabels returns the options of attributeID that used references,
// in the order of all (option sort order). Options no variant carries are left out.
func ColorOptionLabels(attributeID int, used []int, all []gallery.Option) []gallery.Option {
	want := make(map[int]struct{}, len(used))
	for _, id := range used {
		want[id] = struct{}{}
	}
	out := make([]gallery.Option, 0, len(used))
	for _, o := range all {
		if o.AttributeID != attributeID {
			continue
		}
		if _, ok := want[o.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}
