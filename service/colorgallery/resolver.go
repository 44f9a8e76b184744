package colorgallery

import (
	"context"
	"fmt"
	"strings"

	"gallery.GO/config"
	"gallery.GO/core/cache"
	"gallery.GO/core/logger"
)

// ResolveAttribute returns the first candidate that is also a variation axis
// of the product, or "" when none is.
func ResolveAttribute(axes, candidates []string) string {
	present := make(map[string]struct{}, len(axes))
	for _, a := range axes {
		present[a] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := present[c]; ok {
			return c
		}
	}
	return ""
}

// ResolvedAttribute is the selector attribute of one product. The zero value
// means no selector: color features are inert.
type ResolvedAttribute struct {
	Code string `json:"code"`
	ID   int    `json:"id"`
}

func (r ResolvedAttribute) None() bool {
	return r.Code == "" || r.ID == 0
}

// AttributeResolver memoizes the selector attribute per product and store.
// Memos are dropped only when settings are invalidated.
type AttributeResolver struct {
	catalog AttributeCatalog
	memo    *cache.Cache
	log     *logger.Logger
}

func NewAttributeResolver(catalog AttributeCatalog, memo *cache.Cache, log *logger.Logger) *AttributeResolver {
	if memo == nil {
		memo = cache.NewCache()
	}
	if log == nil {
		log = logger.Default()
	}
	return &AttributeResolver{catalog: catalog, memo: memo, log: log}
}

// Resolve picks the selector attribute of productID. Lookup failures are
// logged and yield the zero value without being memoized.
func (r *AttributeResolver) Resolve(ctx context.Context, productID uint, storeID uint16, candidates []string) ResolvedAttribute {
	key := cache.Key("attr", productID, storeID, strings.Join(candidates, ","))
	v, err := r.memo.Remember(key, 0, []string{config.SettingsCacheTag}, func() (interface{}, error) {
		axes, err := r.catalog.VariationAxesFor(ctx, productID)
		if err != nil {
			return nil, err
		}
		code := ResolveAttribute(axes, candidates)
		if code == "" {
			return ResolvedAttribute{}, nil
		}
		id, ok := r.ResolveAttributeID(ctx, code)
		if !ok {
			return nil, fmt.Errorf("attribute id of %s unavailable", code)
		}
		return ResolvedAttribute{Code: code, ID: id}, nil
	})
	if err != nil {
		r.log.Warn(r.log.WithProduct(ctx, productID), "selector attribute lookup failed", err)
		return ResolvedAttribute{}
	}
	return v.(ResolvedAttribute)
}

// ResolveAttributeID returns the numeric id of code. Failures are logged.
func (r *AttributeResolver) ResolveAttributeID(ctx context.Context, code string) (int, bool) {
	if code == "" {
		return 0, false
	}
	v, err := r.memo.Remember(cache.Key("attr_id", code), 0, []string{config.SettingsCacheTag}, func() (interface{}, error) {
		return r.catalog.IDForCode(ctx, code)
	})
	if err != nil {
		r.log.Warn(r.log.WithField(ctx, "attribute", code), "attribute id lookup failed", err)
		return 0, false
	}
	return v.(int), true
}
