package graphql

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"
)

type contextKey string

const CtxKeyStoreID contextKey = "storeID"

// StoreIDFromContext returns the store ID for the current request and
// whether one was supplied at all.
func StoreIDFromContext(ctx context.Context) (uint16, bool) {
	id, ok := ctx.Value(CtxKeyStoreID).(uint16)
	return id, ok
}

// WithStoreID attaches storeID to context.
func WithStoreID(ctx context.Context, storeID uint16) context.Context {
	return context.WithValue(ctx, CtxKeyStoreID, storeID)
}

const (
	HeaderStore     = "Store"
	QueryParamStore = "__Store"
	VarStore        = "__Store"
)

// GetStoreID extracts store_id from the request.
// Priority: 1) Store header, 2) __Store query param, 3) variables.__Store in body.
func GetStoreID(r *http.Request, body []byte) (uint16, bool) {
	if id, ok := parseStore(r.Header.Get(HeaderStore)); ok {
		return id, true
	}
	if id, ok := parseStore(r.URL.Query().Get(QueryParamStore)); ok {
		return id, true
	}
	return ParseStoreFromVariables(body)
}

// ParseStoreFromVariables reads variables.__Store, given as a string or a number.
func ParseStoreFromVariables(body []byte) (uint16, bool) {
	if len(body) == 0 {
		return 0, false
	}
	v := gjson.GetBytes(body, "variables."+VarStore)
	switch v.Type {
	case gjson.String:
		return parseStore(v.Str)
	case gjson.Number:
		if v.Num >= 0 && v.Num <= 65535 {
			return uint16(v.Num), true
		}
	}
	return 0, false
}

func parseStore(s string) (uint16, bool) {
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(id), true
}
