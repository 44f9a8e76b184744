package colorgallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gallery.GO/config"
	"gallery.GO/model/gallery"
)

const colorAttr = 93

type storeState struct {
	media   map[uint][]gallery.MediaRecord
	roles   map[uint]map[string]string
	touched map[uint]int
	nextID  uint
}

func (s storeState) clone() storeState {
	out := storeState{
		media:   make(map[uint][]gallery.MediaRecord, len(s.media)),
		roles:   make(map[uint]map[string]string, len(s.roles)),
		touched: make(map[uint]int, len(s.touched)),
		nextID:  s.nextID,
	}
	for k, v := range s.media {
		out.media[k] = append([]gallery.MediaRecord(nil), v...)
	}
	for k, v := range s.roles {
		m := make(map[string]string, len(v))
		for r, f := range v {
			m[r] = f
		}
		out.roles[k] = m
	}
	for k, v := range s.touched {
		out.touched[k] = v
	}
	return out
}

// fakeStore is an in-memory MediaStore whose transactions restore a snapshot
// on error.
type fakeStore struct {
	mu        sync.Mutex
	state     storeState
	listCalls int
	failFiles map[string]bool
	failTouch map[uint]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		state: storeState{
			media:   map[uint][]gallery.MediaRecord{},
			roles:   map[uint]map[string]string{},
			touched: map[uint]int{},
			nextID:  1000,
		},
		failFiles: map[string]bool{},
		failTouch: map[uint]bool{},
	}
}

func (f *fakeStore) add(productID uint, recs ...gallery.MediaRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.media[productID] = append(f.state.media[productID], recs...)
}

func (f *fakeStore) mediaOf(productID uint) []gallery.MediaRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gallery.MediaRecord(nil), f.state.media[productID]...)
}

func (f *fakeStore) rolesOf(productID uint) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.roles[productID]
}

func (f *fakeStore) touches(productID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.touched[productID]
}

func (f *fakeStore) ListMediaRecords(_ context.Context, productID uint, storeID uint16) ([]gallery.MediaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []gallery.MediaRecord
	for _, rec := range f.state.media[productID] {
		if rec.StoreID == 0 || rec.StoreID == storeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) MediaFiles(_ context.Context, productID uint) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, rec := range f.state.media[productID] {
		if !seen[rec.File] {
			seen[rec.File] = true
			out = append(out, rec.File)
		}
	}
	return out, nil
}

func (f *fakeStore) SetColorTag(_ context.Context, productID, mediaID uint, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for i, rec := range f.state.media[productID] {
		if rec.ID == mediaID {
			f.state.media[productID][i].ColorTag = tag
			found = true
		}
	}
	if !found {
		return fmt.Errorf("media %d: not found", mediaID)
	}
	return nil
}

func (f *fakeStore) LinkMedia(_ context.Context, childID uint, src gallery.MediaRecord, tag string) (gallery.MediaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFiles[src.File] {
		return gallery.MediaRecord{}, fmt.Errorf("copy %s: no such file", src.File)
	}
	f.state.nextID++
	rec := src
	rec.ID = f.state.nextID
	rec.ColorTag = tag
	rec.StoreID = 0
	rec.Enabled = true
	f.state.media[childID] = append(f.state.media[childID], rec)
	return rec, nil
}

func (f *fakeStore) DeleteAllMedia(_ context.Context, productID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := distinctIDs(f.state.media[productID])
	delete(f.state.media, productID)
	return n, nil
}

func (f *fakeStore) ResetRoleAttributes(_ context.Context, productID uint, roles []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range roles {
		delete(f.state.roles[productID], r)
	}
	return nil
}

func (f *fakeStore) AssignRoles(_ context.Context, productID uint, file string, roles []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.roles[productID] == nil {
		f.state.roles[productID] = map[string]string{}
	}
	for _, r := range roles {
		f.state.roles[productID][r] = file
	}
	return nil
}

func (f *fakeStore) Touch(_ context.Context, productID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTouch[productID] {
		return errors.New("save failed")
	}
	f.state.touched[productID]++
	return nil
}

func (f *fakeStore) WithinTx(_ context.Context, fn func(gallery.MediaStore) error) error {
	f.mu.Lock()
	snapshot := f.state.clone()
	f.mu.Unlock()
	if err := fn(f); err != nil {
		f.mu.Lock()
		f.state = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

type fakeCatalog struct {
	mu        sync.Mutex
	axes      map[uint][]string
	ids       map[string]int
	axesErr   error
	axesCalls int
}

func (c *fakeCatalog) IDForCode(_ context.Context, code string) (int, error) {
	id, ok := c.ids[code]
	if !ok {
		return 0, fmt.Errorf("attribute %q: not found", code)
	}
	return id, nil
}

func (c *fakeCatalog) VariationAxesFor(_ context.Context, productID uint) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.axesCalls++
	if c.axesErr != nil {
		return nil, c.axesErr
	}
	return c.axes[productID], nil
}

type fakeGraph struct {
	children map[uint][]gallery.Child
	options  []gallery.Option
	defaults map[uint]int
	err      error
}

func (g *fakeGraph) Children(_ context.Context, productID uint, attributeCode string, _ uint16) ([]gallery.Child, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := append([]gallery.Child(nil), g.children[productID]...)
	if attributeCode == "" {
		for i := range out {
			out[i].ColorOptionID = 0
		}
	}
	return out, nil
}

func (g *fakeGraph) Options(_ context.Context, attributeID int, _ uint16) ([]gallery.Option, error) {
	var out []gallery.Option
	for _, o := range g.options {
		if o.AttributeID == attributeID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (g *fakeGraph) DefaultColor(_ context.Context, productID uint, _ uint16) (int, bool, error) {
	id, ok := g.defaults[productID]
	return id, ok, nil
}

type fakeStock struct {
	name    string
	salable map[uint]bool
	err     error
	calls   int
}

func (s *fakeStock) Name() string { return s.name }

func (s *fakeStock) Salable(_ context.Context, _ []gallery.Child) (map[uint]bool, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.salable, nil
}

type fakeSettings struct {
	st          config.GallerySettings
	invalidated int
}

func (f *fakeSettings) For(context.Context, uint16) config.GallerySettings { return f.st }
func (f *fakeSettings) Invalidate()                                       { f.invalidated++ }

type fakeLister struct {
	ids   []uint
	since time.Time
}

func (l *fakeLister) ConfigurableProducts(_ context.Context, since time.Time) ([]uint, error) {
	l.since = since
	return l.ids, nil
}

// parentMedia is the gallery of configurable product 1.
func parentMedia() []gallery.MediaRecord {
	return []gallery.MediaRecord{
		{ID: 101, File: "/r/red.jpg", Kind: gallery.KindImage, Position: 1, Enabled: true, ColorTag: "attribute93-10"},
		{ID: 102, File: "/b/blue.jpg", Kind: gallery.KindImage, Position: 2, Enabled: true, ColorTag: "attribute93-11"},
		{ID: 103, File: "/b/both.jpg", Kind: gallery.KindImage, Position: 3, Enabled: true, ColorTag: "attribute93-10,attribute93-11"},
		{ID: 104, File: "/g/generic.jpg", Kind: gallery.KindImage, Position: 4, Enabled: true},
		{ID: 105, File: "/r/red.mp4", Kind: gallery.KindVideo, Position: 5, Enabled: true, ColorTag: "attribute93-10"},
		{ID: 106, File: "/o/off.jpg", Kind: gallery.KindImage, Position: 6, Enabled: false, ColorTag: "attribute93-10"},
	}
}

func testChildren() []gallery.Child {
	return []gallery.Child{
		{ID: 11, SKU: "tee-red", ColorOptionID: 10},
		{ID: 12, SKU: "tee-blue", ColorOptionID: 11},
		{ID: 13, SKU: "tee-none"},
		{ID: 14, SKU: "tee-green", ColorOptionID: 12},
	}
}

func testOptions() []gallery.Option {
	return []gallery.Option{
		{ID: 10, AttributeID: colorAttr, Label: "Rojo", SortOrder: 1},
		{ID: 11, AttributeID: colorAttr, Label: "Azul", SortOrder: 2},
		{ID: 12, AttributeID: colorAttr, Label: "Verde", SortOrder: 3},
		{ID: 50, AttributeID: 94, Label: "M", SortOrder: 1},
	}
}
