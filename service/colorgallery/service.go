package colorgallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gallery.GO/config"
	"gallery.GO/core/cache"
	apperrors "gallery.GO/core/errors"
	"gallery.GO/core/logger"
	"gallery.GO/core/metrics"
	"gallery.GO/core/slug"
	"gallery.GO/model/gallery"
	"gallery.GO/storefront/switcher"
)

// SettingsSource yields the effective module settings of a store.
type SettingsSource interface {
	For(ctx context.Context, storeID uint16) config.GallerySettings
	Invalidate()
}

// Deps are the collaborators of a Service. Memo should be the cache the
// settings memoize into so one invalidation drops both.
type Deps struct {
	Settings SettingsSource
	Catalog  AttributeCatalog
	Graph    VariantGraph
	Products ProductLister
	Store    gallery.MediaStore
	Stock    SalabilityProvider
	Docs     cache.DocumentCache
	Memo     *cache.Cache
	Metrics  *metrics.GalleryMetrics
	Log      *logger.Logger
}

// Service is the entry point of the color gallery: config documents for the
// storefront and the batch operations run by the CLI, API and cron.
type Service struct {
	settings SettingsSource
	graph    VariantGraph
	products ProductLister
	store    gallery.MediaStore
	stock    SalabilityProvider
	resolver *AttributeResolver
	engine   *PropagationEngine
	docs     cache.DocumentCache
	metrics  *metrics.GalleryMetrics
	log      *logger.Logger

	// productID -> *sync.Map of store ids with a cached document
	docKeys sync.Map
}

// RunOptions are caller overrides for a batch run. A nil CleanFirst uses the
// clean_before_propagate setting.
type RunOptions struct {
	DryRun     bool
	CleanFirst *bool
}

func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Default()
	}
	if d.Docs == nil {
		d.Docs = cache.NopDocumentCache{}
	}
	return &Service{
		settings: d.Settings,
		graph:    d.Graph,
		products: d.Products,
		store:    d.Store,
		stock:    d.Stock,
		resolver: NewAttributeResolver(d.Catalog, d.Memo, d.Log),
		engine:   NewPropagationEngine(d.Store, d.Metrics, d.Log),
		docs:     d.Docs,
		metrics:  d.Metrics,
		log:      d.Log,
	}
}

func docKey(productID uint, storeID uint16) string {
	return fmt.Sprintf("config:%d:%d", productID, storeID)
}

// inert is the document of a product without color features.
func inert(st config.GallerySettings) *switcher.Config {
	return &switcher.Config{
		Enabled:            false,
		ShowGenericImages:  st.ShowGenericImages,
		StockFilterEnabled: st.StockFilterEnabled,
		OutOfStockBehavior: st.OutOfStockBehavior,
		PreselectColor:     st.PreselectColor,
		DeepLinkEnabled:    st.DeepLinkEnabled,
		UpdateURLOnSelect:  st.UpdateURLOnSelect,
		AvailableColors:    []int{},
		ColorsWithStock:    []int{},
		ColorMapping:       map[string]switcher.ColorEntry{},
		GalleryAdapter:     st.GalleryAdapter,
	}
}

// productData is what one config build loads.
type productData struct {
	attr     ResolvedAttribute
	records  []gallery.MediaRecord
	children []gallery.Child
	options  []gallery.Option
	salable  map[uint]bool
	stockErr error
	def      *int
}

// load resolves the selector attribute and loads media, children, options,
// salability and the manual default concurrently.
func (s *Service) load(ctx context.Context, st config.GallerySettings, productID uint, storeID uint16, withStock bool) (*productData, error) {
	data := &productData{attr: s.resolver.Resolve(ctx, productID, storeID, st.SelectorAttributes)}
	if data.attr.None() {
		return data, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.store.ListMediaRecords(gctx, productID, storeID)
		if err != nil {
			return fmt.Errorf("media of %d: %w", productID, err)
		}
		data.records = recs
		return nil
	})
	g.Go(func() error {
		children, err := s.graph.Children(gctx, productID, data.attr.Code, storeID)
		if err != nil {
			return err
		}
		data.children = children
		if withStock && s.stock != nil {
			data.salable, data.stockErr = s.stock.Salable(gctx, children)
			if data.stockErr != nil {
				s.log.Warn(gctx, "salability unavailable, stock filter skipped", data.stockErr)
			}
		}
		return nil
	})
	g.Go(func() error {
		opts, err := s.graph.Options(gctx, data.attr.ID, storeID)
		if err != nil {
			return fmt.Errorf("options of attribute %d: %w", data.attr.ID, err)
		}
		data.options = opts
		return nil
	})
	g.Go(func() error {
		id, ok, err := s.graph.DefaultColor(gctx, productID, storeID)
		if err != nil {
			s.log.Warn(gctx, "default color lookup failed", err)
			return nil
		}
		if ok {
			data.def = &id
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "gallery lookup failed")
	}
	return data, nil
}

// BuildConfig assembles the gallery document of productID for storeID.
// A disabled module or a product without selector attribute yields an inert
// document.
func (s *Service) BuildConfig(ctx context.Context, productID uint, storeID uint16) (*switcher.Config, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveBuild(time.Since(start)) }()

	ctx = s.log.WithStore(s.log.WithProduct(ctx, productID), storeID)
	st := s.settings.For(ctx, storeID)
	cfg := inert(st)
	if !st.Enabled {
		return cfg, nil
	}
	data, err := s.load(ctx, st, productID, storeID, st.StockFilterEnabled)
	if err != nil {
		return nil, err
	}
	if data.attr.None() {
		return cfg, nil
	}

	mapping := BuildMapping(data.attr.ID, SelectScoped(data.records, storeID))
	labels := ColorOptionLabels(data.attr.ID, UsedOptionIDs(data.children), data.options)

	stockActive := st.StockFilterEnabled && data.stockErr == nil && data.salable != nil
	var withStock map[int]struct{}
	if stockActive {
		withStock = ColorsWithStock(StockOf(data.children, data.salable))
		mapping = ApplyBehavior(mapping, withStock, st.OutOfStockBehavior)
	}

	cfg.Enabled = true
	cfg.ColorAttributeID = data.attr.ID
	cfg.ColorAttributeCode = data.attr.Code
	cfg.StockFilterEnabled = stockActive
	cfg.DefaultColorOptionID = data.def
	for _, o := range labels {
		_, inStock := withStock[o.ID]
		if stockActive && inStock {
			cfg.ColorsWithStock = append(cfg.ColorsWithStock, o.ID)
		}
		if stockActive && !inStock && st.OutOfStockBehavior == config.BehaviorHide {
			continue
		}
		cfg.AvailableColors = append(cfg.AvailableColors, o.ID)
		if b, ok := mapping[strconv.Itoa(o.ID)]; ok {
			cfg.ColorMapping[strconv.Itoa(o.ID)] = entry(o.Label, b)
		}
	}
	if b, ok := mapping[gallery.GenericKey]; ok {
		cfg.ColorMapping[gallery.GenericKey] = entry("", b)
	}
	return cfg, nil
}

func entry(label string, b gallery.Bucket) switcher.ColorEntry {
	e := switcher.ColorEntry{Label: label, Images: []uint{}, Videos: []uint{}, HasStock: b.HasStock}
	for _, rec := range b.Images {
		e.Images = append(e.Images, rec.ID)
	}
	for _, rec := range b.Videos {
		e.Videos = append(e.Videos, rec.ID)
	}
	return e
}

// ConfigJSON returns the serialized gallery document, from the document cache
// when present.
func (s *Service) ConfigJSON(ctx context.Context, productID uint, storeID uint16) ([]byte, error) {
	key := docKey(productID, storeID)
	if doc, ok := s.docs.Get(ctx, key); ok {
		return doc, nil
	}
	cfg, err := s.BuildConfig(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode gallery config: %w", err)
	}
	if err := s.docs.Set(ctx, key, doc); err != nil {
		s.log.Warn(s.log.WithProduct(ctx, productID), "gallery config not cached", err)
	} else {
		stores, _ := s.docKeys.LoadOrStore(productID, &sync.Map{})
		stores.(*sync.Map).Store(storeID, struct{}{})
	}
	return doc, nil
}

// Config is ConfigJSON decoded.
func (s *Service) Config(ctx context.Context, productID uint, storeID uint16) (switcher.Config, error) {
	doc, err := s.ConfigJSON(ctx, productID, storeID)
	if err != nil {
		return switcher.Config{}, err
	}
	return switcher.ParseConfig(doc)
}

// ResolveColorParam maps a deep-link value to an option id.
func ResolveColorParam(value string, labels map[int]string) (int, bool) {
	return slug.Resolve(value, labels)
}

// ResolveColor returns the gallery document with the default color chosen as
// the storefront would for a URL carrying color=value.
func (s *Service) ResolveColor(ctx context.Context, productID uint, storeID uint16, value string) (switcher.Config, error) {
	cfg, err := s.Config(ctx, productID, storeID)
	if err != nil {
		return cfg, err
	}
	if _, ok := ResolveColorParam(value, cfg.Labels()); !ok {
		s.log.Debug(s.log.WithField(s.log.WithProduct(ctx, productID), "color", value), "deep-link color not recognized")
	}
	cfg.DefaultColorOptionID = cfg.DefaultColor("?" + switcher.ColorParam + "=" + url.QueryEscape(value))
	return cfg, nil
}

// invalidateProduct drops every cached document of productID.
func (s *Service) invalidateProduct(ctx context.Context, productID uint) {
	v, ok := s.docKeys.LoadAndDelete(productID)
	if !ok {
		return
	}
	var keys []string
	v.(*sync.Map).Range(func(store, _ interface{}) bool {
		keys = append(keys, docKey(productID, store.(uint16)))
		return true
	})
	if err := s.docs.Delete(ctx, keys...); err != nil {
		s.log.Warn(s.log.WithProduct(ctx, productID), "gallery config invalidation failed", err)
	}
}

// InvalidateCaches drops settings, attribute memos and cached documents.
func (s *Service) InvalidateCaches(ctx context.Context) {
	s.settings.Invalidate()
	s.docKeys.Range(func(pid, _ interface{}) bool {
		s.invalidateProduct(ctx, pid.(uint))
		return true
	})
}

// Propagate copies the product's color media onto its children.
func (s *Service) Propagate(ctx context.Context, productID uint, opts RunOptions) *Report {
	ctx = s.log.WithProduct(ctx, productID)
	st := s.settings.For(ctx, 0)
	if st.PropagationMode == config.PropagationDisabled {
		report := NewReport("propagate", productID, opts.DryRun)
		report.Action("propagation disabled")
		return report
	}
	return s.propagate(ctx, productID, st, opts)
}

func (s *Service) propagate(ctx context.Context, productID uint, st config.GallerySettings, opts RunOptions) *Report {
	failed := func(err error) *Report {
		report := NewReport("propagate", productID, opts.DryRun)
		report.Error(err)
		return report
	}
	attr := s.resolver.Resolve(ctx, productID, 0, st.SelectorAttributes)
	if attr.None() {
		report := NewReport("propagate", productID, opts.DryRun)
		report.Action("product %d: no selector attribute, nothing to propagate", productID)
		return report
	}
	records, err := s.store.ListMediaRecords(ctx, productID, 0)
	if err != nil {
		return failed(fmt.Errorf("parent media: %w", err))
	}
	children, err := s.graph.Children(ctx, productID, attr.Code, 0)
	if err != nil {
		return failed(err)
	}
	clean := st.CleanBeforePropagate
	if opts.CleanFirst != nil {
		clean = *opts.CleanFirst
	}
	run := s.engine.Propagate(ctx, attr.ID, BuildMapping(attr.ID, SelectScoped(records, 0)), children, PropagateOptions{
		CleanFirst: clean,
		Roles:      st.PropagationRoles,
		DryRun:     opts.DryRun,
	})
	run.ProductID = productID
	s.log.Info(s.log.WithField(ctx, "run_id", run.RunID), fmt.Sprintf("propagation finished: %d changed, %d errors", run.Counts.ChildrenChanged, len(run.Errors)))
	return run
}

// Clean removes every media record and image role from the product's children.
func (s *Service) Clean(ctx context.Context, productID uint, opts RunOptions) *Report {
	ctx = s.log.WithProduct(ctx, productID)
	children, err := s.graph.Children(ctx, productID, "", 0)
	if err != nil {
		report := NewReport("clean", productID, opts.DryRun)
		report.Error(err)
		return report
	}
	run := s.engine.CleanChildren(ctx, children, config.DefaultImageRoles, opts.DryRun)
	run.ProductID = productID
	return run
}

// Migrate tags the product's media from the colors of children sharing files.
func (s *Service) Migrate(ctx context.Context, productID uint, opts RunOptions) *Report {
	ctx = s.log.WithProduct(ctx, productID)
	st := s.settings.For(ctx, 0)
	report := NewReport("migrate", productID, opts.DryRun)
	attr := s.resolver.Resolve(ctx, productID, 0, st.SelectorAttributes)
	if attr.None() {
		report.Action("product %d: no selector attribute, nothing to migrate", productID)
		return report
	}
	records, err := s.store.ListMediaRecords(ctx, productID, 0)
	if err != nil {
		report.Error(fmt.Errorf("parent media: %w", err))
		return report
	}
	defaults := records[:0:0]
	for _, rec := range records {
		if rec.StoreID == 0 {
			defaults = append(defaults, rec)
		}
	}
	children, err := s.graph.Children(ctx, productID, attr.Code, 0)
	if err != nil {
		report.Error(err)
		return report
	}
	run := s.engine.MigrateTags(ctx, productID, attr.ID, defaults, children, opts.DryRun)
	if !opts.DryRun && run.Counts.TagsUpdated > 0 {
		s.invalidateProduct(ctx, productID)
	}
	return run
}

// PropagateUpdated runs propagation over configurable products changed since
// the given time. It does nothing unless propagation is automatic.
func (s *Service) PropagateUpdated(ctx context.Context, since time.Time) *Report {
	st := s.settings.For(ctx, 0)
	report := NewReport("propagate", 0, false)
	if st.PropagationMode != config.PropagationAutomatic {
		report.Action("propagation mode %s, automatic run skipped", st.PropagationMode)
		return report
	}
	ids, err := s.products.ConfigurableProducts(ctx, since)
	if err != nil {
		report.Error(err)
		return report
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			report.Error(err)
			break
		}
		report.Merge(s.propagate(s.log.WithProduct(ctx, id), id, st, RunOptions{}))
	}
	return report
}

// Diagnostics describes how the gallery of one product resolves.
type Diagnostics struct {
	ProductID            uint              `json:"product_id"`
	StoreID              uint16            `json:"store_id"`
	Enabled              bool              `json:"enabled"`
	PropagationMode      string            `json:"propagation_mode"`
	Attribute            ResolvedAttribute `json:"attribute"`
	MediaPerBucket       map[string]int    `json:"media_per_bucket"`
	ChildrenWithoutColor []uint            `json:"children_without_color"`
	ColorsWithoutMedia   []int             `json:"colors_without_media"`
	ColorsWithStock      []int             `json:"colors_with_stock"`
	StockProvider        string            `json:"stock_provider,omitempty"`
	StockError           string            `json:"stock_error,omitempty"`
	DefaultColor         *int              `json:"default_color"`
	InitialImages        []uint            `json:"initial_images"`
}

// Diagnose reports the resolved attribute, bucket sizes, children without a
// color, colors without media, the storefront's default color and the media
// a first page load without deep link shows.
func (s *Service) Diagnose(ctx context.Context, productID uint, storeID uint16) (*Diagnostics, error) {
	ctx = s.log.WithStore(s.log.WithProduct(ctx, productID), storeID)
	st := s.settings.For(ctx, storeID)
	d := &Diagnostics{
		ProductID:            productID,
		StoreID:              storeID,
		Enabled:              st.Enabled,
		PropagationMode:      st.PropagationMode,
		MediaPerBucket:       map[string]int{},
		ChildrenWithoutColor: []uint{},
		ColorsWithoutMedia:   []int{},
		ColorsWithStock:      []int{},
		InitialImages:        []uint{},
	}
	if s.stock != nil {
		d.StockProvider = s.stock.Name()
	}
	data, err := s.load(ctx, st, productID, storeID, true)
	if err != nil {
		return nil, err
	}
	d.Attribute = data.attr
	if data.attr.None() {
		return d, nil
	}

	scoped := SelectScoped(data.records, storeID)
	mapping := BuildMapping(data.attr.ID, scoped)
	for key, b := range mapping {
		d.MediaPerBucket[key] = b.Len()
	}
	for _, c := range data.children {
		if c.ColorOptionID == 0 {
			d.ChildrenWithoutColor = append(d.ChildrenWithoutColor, c.ID)
		}
	}
	for _, id := range UsedOptionIDs(data.children) {
		if _, ok := mapping[strconv.Itoa(id)]; !ok {
			d.ColorsWithoutMedia = append(d.ColorsWithoutMedia, id)
		}
	}
	if data.stockErr != nil {
		d.StockError = data.stockErr.Error()
	} else if data.salable != nil {
		for id := range ColorsWithStock(StockOf(data.children, data.salable)) {
			d.ColorsWithStock = append(d.ColorsWithStock, id)
		}
		sort.Ints(d.ColorsWithStock)
	}

	cfg, err := s.BuildConfig(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	d.DefaultColor = cfg.DefaultColor("")

	media := make([]switcher.Media, 0, len(scoped))
	for _, rec := range scoped {
		media = append(media, switcher.Media{ID: rec.ID, Position: rec.Position, Kind: string(rec.Kind), ColorTag: rec.ColorTag})
	}
	ev, err := switcher.New(*cfg, media, nil, nil).Init("")
	if err != nil {
		return nil, err
	}
	for _, m := range ev.Images {
		d.InitialImages = append(d.InitialImages, m.ID)
	}
	return d, nil
}
