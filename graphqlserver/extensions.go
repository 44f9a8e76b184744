package graphqlserver

import (
	"context"
	"errors"
	"fmt"

	"gallery.GO/graphql"
	"gallery.GO/graphql/registry"
)

func init() {
	// _extension(name: "colorGalleryDiagnose", args: "{\"productId\":12,\"storeId\":1}")
	registry.Register("colorGalleryDiagnose", diagnose)
}

func diagnose(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	svc, ok := ServiceFromContext(ctx)
	if !ok {
		return nil, errors.New("colorGalleryDiagnose: no gallery service")
	}
	pid, ok := number(args["productId"])
	if !ok || pid <= 0 {
		return nil, errors.New("colorGalleryDiagnose: productId is required")
	}
	storeID, _ := graphql.StoreIDFromContext(ctx)
	if v, present := args["storeId"]; present {
		s, ok := number(v)
		if !ok || s < 0 || s > 65535 {
			return nil, fmt.Errorf("colorGalleryDiagnose: invalid storeId %v", v)
		}
		storeID = uint16(s)
	}
	return svc.Diagnose(ctx, uint(pid), storeID)
}

// number accepts JSON numbers; args arrive through encoding/json as float64.
func number(v interface{}) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
