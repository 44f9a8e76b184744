package graphqlserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"gallery.GO/graphql"
	"gallery.GO/graphql/registry"
	"gallery.GO/service/colorgallery"
	"gallery.GO/storefront/switcher"
)

// GalleryService is the part of the service the resolvers read.
type GalleryService interface {
	Config(ctx context.Context, productID uint, storeID uint16) (switcher.Config, error)
	Diagnose(ctx context.Context, productID uint, storeID uint16) (*colorgallery.Diagnostics, error)
}

type serviceKey struct{}

// ServiceFromContext returns the service the current request is resolved with.
// Extension resolvers use it to reach the gallery without a global.
func ServiceFromContext(ctx context.Context) (GalleryService, bool) {
	svc, ok := ctx.Value(serviceKey{}).(GalleryService)
	return svc, ok
}

// RootResolver implements the Query fields.
type RootResolver struct {
	svc GalleryService
}

// ColorGalleryArgs matches colorGallery(productId, storeId).
type ColorGalleryArgs struct {
	ProductID int32
	StoreID   *int32
}

func (r *RootResolver) ColorGallery(ctx context.Context, args ColorGalleryArgs) (*graphql.ColorGallery, error) {
	if args.ProductID <= 0 {
		return nil, errors.New("productId must be positive")
	}
	storeID, err := storeArg(ctx, args.StoreID)
	if err != nil {
		return nil, err
	}
	cfg, err := r.svc.Config(ctx, uint(args.ProductID), storeID)
	if err != nil {
		return nil, err
	}
	return graphql.FromConfig(cfg), nil
}

func storeArg(ctx context.Context, arg *int32) (uint16, error) {
	if arg == nil {
		id, _ := graphql.StoreIDFromContext(ctx)
		return id, nil
	}
	if *arg < 0 || *arg > 65535 {
		return 0, fmt.Errorf("storeId %d out of range", *arg)
	}
	return uint16(*arg), nil
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *RootResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, fmt.Errorf("extension %s: args: %w", args.Name, err)
		}
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(context.WithValue(ctx, serviceKey{}, r.svc), args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(svc GalleryService) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{svc: svc}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
