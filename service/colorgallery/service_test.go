package colorgallery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery.GO/config"
	"gallery.GO/core/cache"
	"gallery.GO/core/logger"
	"gallery.GO/model/gallery"
)

type fixture struct {
	svc      *Service
	store    *fakeStore
	catalog  *fakeCatalog
	graph    *fakeGraph
	stock    *fakeStock
	settings *fakeSettings
	lister   *fakeLister
}

func newFixture(t *testing.T, mutate func(*config.GallerySettings)) *fixture {
	t.Helper()
	st := config.DefaultGallerySettings()
	if mutate != nil {
		mutate(&st)
	}
	f := &fixture{
		store:    newFakeStore(),
		catalog:  &fakeCatalog{axes: map[uint][]string{1: {"size", "color"}}, ids: map[string]int{"color": colorAttr}},
		graph:    &fakeGraph{children: map[uint][]gallery.Child{1: testChildren()}, options: testOptions(), defaults: map[uint]int{}},
		stock:    &fakeStock{name: "fake", salable: map[uint]bool{12: true}},
		settings: &fakeSettings{st: st},
		lister:   &fakeLister{},
	}
	f.store.add(1, parentMedia()...)
	f.svc = NewService(Deps{
		Settings: f.settings,
		Catalog:  f.catalog,
		Graph:    f.graph,
		Products: f.lister,
		Store:    f.store,
		Stock:    f.stock,
		Docs:     cache.NewMemoryDocumentCache(nil, 0),
		Memo:     cache.NewCache(),
		Log:      logger.Nop(),
	})
	return f
}

func TestBuildConfig_Document(t *testing.T) {
	f := newFixture(t, nil)
	f.graph.defaults[1] = 11

	cfg, err := f.svc.BuildConfig(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, colorAttr, cfg.ColorAttributeID)
	assert.Equal(t, "color", cfg.ColorAttributeCode)
	assert.Equal(t, []int{10, 11, 12}, cfg.AvailableColors)
	assert.Empty(t, cfg.ColorsWithStock)
	require.NotNil(t, cfg.DefaultColorOptionID)
	assert.Equal(t, 11, *cfg.DefaultColorOptionID)

	assert.Equal(t, "Rojo", cfg.ColorMapping["10"].Label)
	assert.Equal(t, []uint{101, 103}, cfg.ColorMapping["10"].Images)
	assert.Equal(t, []uint{105}, cfg.ColorMapping["10"].Videos)
	assert.Equal(t, []uint{102, 103}, cfg.ColorMapping["11"].Images)
	assert.Equal(t, []uint{104}, cfg.ColorMapping[gallery.GenericKey].Images)
	assert.NotContains(t, cfg.ColorMapping, "12")
	assert.Equal(t, 0, f.stock.calls, "stock is not read while the filter is off")
}

func TestConfigJSON_WireShape(t *testing.T) {
	f := newFixture(t, nil)
	doc, err := f.svc.ConfigJSON(context.Background(), 1, 0)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc, &fields))
	for _, key := range []string{
		"enabled", "colorAttributeId", "colorAttributeCode", "showGenericImages", "stockFilterEnabled",
		"outOfStockBehavior", "defaultColorOptionId", "preselectColor", "deepLinkEnabled", "updateUrlOnSelect",
		"availableColors", "colorsWithStock", "colorMapping", "galleryAdapter",
	} {
		assert.Contains(t, fields, key)
	}
	assert.JSONEq(t, `[]`, string(fields["colorsWithStock"]))
	assert.JSONEq(t, `null`, string(fields["defaultColorOptionId"]))
	assert.JSONEq(t, `{"label":"","images":[104],"videos":[]}`, string(mustField(t, fields["colorMapping"], "null")))
}

func mustField(t *testing.T, raw json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[key]
}

func TestBuildConfig_StockHide(t *testing.T) {
	f := newFixture(t, func(st *config.GallerySettings) { st.StockFilterEnabled = true })
	cfg, err := f.svc.BuildConfig(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.True(t, cfg.StockFilterEnabled)
	assert.Equal(t, []int{11}, cfg.AvailableColors)
	assert.Equal(t, []int{11}, cfg.ColorsWithStock)
	assert.NotContains(t, cfg.ColorMapping, "10")
	assert.Contains(t, cfg.ColorMapping, gallery.GenericKey)
}

func TestBuildConfig_StockDim(t *testing.T) {
	f := newFixture(t, func(st *config.GallerySettings) {
		st.StockFilterEnabled = true
		st.OutOfStockBehavior = config.BehaviorDim
	})
	cfg, err := f.svc.BuildConfig(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 12}, cfg.AvailableColors)
	require.NotNil(t, cfg.ColorMapping["10"].HasStock)
	assert.False(t, *cfg.ColorMapping["10"].HasStock)
	assert.True(t, *cfg.ColorMapping["11"].HasStock)
}

func TestBuildConfig_StockFailureDisablesFilter(t *testing.T) {
	f := newFixture(t, func(st *config.GallerySettings) { st.StockFilterEnabled = true })
	f.stock.err = errors.New("all providers failed")
	cfg, err := f.svc.BuildConfig(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.False(t, cfg.StockFilterEnabled)
	assert.Equal(t, []int{10, 11, 12}, cfg.AvailableColors)
}

func TestBuildConfig_Inert(t *testing.T) {
	disabled := newFixture(t, func(st *config.GallerySettings) { st.Enabled = false })
	cfg, err := disabled.svc.BuildConfig(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.ColorMapping)
	assert.Equal(t, 0, disabled.store.listCalls)

	noSelector := newFixture(t, func(st *config.GallerySettings) { st.SelectorAttributes = []string{"pattern"} })
	cfg, err = noSelector.svc.BuildConfig(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.AvailableColors)
}

func TestBuildConfig_LookupFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.graph.err = errors.New("connection refused")
	_, err := f.svc.BuildConfig(context.Background(), 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEPENDENCY_ERROR")
}

func TestConfigJSON_CachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	first, err := f.svc.ConfigJSON(ctx, 1, 0)
	require.NoError(t, err)
	_, err = f.svc.ConfigJSON(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.listCalls)

	f.svc.InvalidateCaches(ctx)
	assert.Equal(t, 1, f.settings.invalidated)
	again, err := f.svc.ConfigJSON(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.listCalls)
	assert.JSONEq(t, string(first), string(again))
}

func TestResolveColor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	cfg, err := f.svc.ResolveColor(ctx, 1, 0, "azul")
	require.NoError(t, err)
	require.NotNil(t, cfg.DefaultColorOptionID)
	assert.Equal(t, 11, *cfg.DefaultColorOptionID)

	cfg, err = f.svc.ResolveColor(ctx, 1, 0, "12")
	require.NoError(t, err)
	assert.Equal(t, 12, *cfg.DefaultColorOptionID)

	cfg, err = f.svc.ResolveColor(ctx, 1, 0, "purple")
	require.NoError(t, err)
	assert.Equal(t, 10, *cfg.DefaultColorOptionID, "unknown color falls back to the first available")

	id, ok := ResolveColorParam("marron-oscuro", map[int]string{5: "Marrón Oscuro"})
	assert.True(t, ok)
	assert.Equal(t, 5, id)
}

func TestService_Propagate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	report := f.svc.Propagate(ctx, 1, RunOptions{})
	require.False(t, report.HasErrors(), report.Errors)
	assert.Equal(t, uint(1), report.ProductID)
	assert.Equal(t, 8, report.Counts.MediaLinked)
	assert.Equal(t, "/r/red.jpg", f.store.rolesOf(11)["image"])
	assert.NotContains(t, f.store.rolesOf(11), "swatch_image")

	clean := true
	again := f.svc.Propagate(ctx, 1, RunOptions{CleanFirst: &clean, DryRun: true})
	assert.Equal(t, 8, again.Counts.MediaRemoved)
	assert.Equal(t, 8, again.Counts.MediaLinked)
	assert.Len(t, f.store.mediaOf(11), 4)
}

func TestService_PropagationDisabled(t *testing.T) {
	f := newFixture(t, func(st *config.GallerySettings) { st.PropagationMode = config.PropagationDisabled })
	report := f.svc.Propagate(context.Background(), 1, RunOptions{})
	assert.Equal(t, []string{"propagation disabled"}, report.Actions)
	assert.Empty(t, f.store.mediaOf(11))
}

func TestService_PropagateReportsLookupErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.graph.err = errors.New("connection refused")
	report := f.svc.Propagate(context.Background(), 1, RunOptions{})
	assert.True(t, report.HasErrors())
}

func TestService_CleanAndMigrate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.svc.Propagate(ctx, 1, RunOptions{})

	report := f.svc.Clean(ctx, 1, RunOptions{})
	require.False(t, report.HasErrors(), report.Errors)
	assert.Equal(t, 8, report.Counts.MediaRemoved)
	assert.Empty(t, f.store.mediaOf(11))

	// the child keeps a file the parent has without a tag
	f.store.add(12, gallery.MediaRecord{ID: 500, File: "/g/generic.jpg"})
	_, err := f.svc.ConfigJSON(ctx, 1, 0)
	require.NoError(t, err)
	migrated := f.svc.Migrate(ctx, 1, RunOptions{})
	require.False(t, migrated.HasErrors(), migrated.Errors)
	assert.Equal(t, 1, migrated.Counts.TagsUpdated)

	cfg, err := f.svc.Config(ctx, 1, 0)
	require.NoError(t, err)
	assert.Contains(t, cfg.ColorMapping["11"].Images, uint(104), "migration must invalidate the cached document")
}

func TestService_PropagateUpdated(t *testing.T) {
	ctx := context.Background()
	manual := newFixture(t, nil)
	manual.lister.ids = []uint{1}
	report := manual.svc.PropagateUpdated(ctx, time.Unix(0, 0))
	assert.Equal(t, []string{"propagation mode manual, automatic run skipped"}, report.Actions)
	assert.Empty(t, manual.store.mediaOf(11))

	auto := newFixture(t, func(st *config.GallerySettings) { st.PropagationMode = config.PropagationAutomatic })
	auto.lister.ids = []uint{1}
	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	report = auto.svc.PropagateUpdated(ctx, since)
	require.False(t, report.HasErrors(), report.Errors)
	assert.Equal(t, since, auto.lister.since)
	assert.Equal(t, 8, report.Counts.MediaLinked)
}

func TestDiagnose(t *testing.T) {
	f := newFixture(t, nil)
	d, err := f.svc.Diagnose(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, ResolvedAttribute{Code: "color", ID: colorAttr}, d.Attribute)
	assert.Equal(t, map[string]int{"10": 3, "11": 2, gallery.GenericKey: 1}, d.MediaPerBucket)
	assert.Equal(t, []uint{13}, d.ChildrenWithoutColor)
	assert.Equal(t, []int{12}, d.ColorsWithoutMedia)
	assert.Equal(t, []int{11}, d.ColorsWithStock)
	assert.Equal(t, "fake", d.StockProvider)
	require.NotNil(t, d.DefaultColor)
	assert.Equal(t, 10, *d.DefaultColor)
	assert.NotEmpty(t, d.InitialImages)
}
