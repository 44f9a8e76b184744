package colorgallery

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"gallery.GO/config"
	"gallery.GO/core/logger"
	"gallery.GO/model/gallery"
)

// ChildSalability is one child's color and whether it can be sold.
type ChildSalability struct {
	ColorOptionID int
	Salable       bool
}

// ColorsWithStock returns the colors having at least one salable child.
func ColorsWithStock(children []ChildSalability) map[int]struct{} {
	out := make(map[int]struct{})
	for _, c := range children {
		if c.ColorOptionID == 0 {
			continue
		}
		if _, done := out[c.ColorOptionID]; done {
			continue
		}
		if c.Salable {
			out[c.ColorOptionID] = struct{}{}
		}
	}
	return out
}

// ApplyBehavior folds stock into the mapping. The generic bucket always
// passes; hide drops colors without stock; dim keeps every color and sets
// HasStock. The input map is not modified.
func ApplyBehavior(m gallery.ColorMediaMap, withStock map[int]struct{}, behavior string) gallery.ColorMediaMap {
	out := make(gallery.ColorMediaMap, len(m))
	for key, b := range m {
		if key == gallery.GenericKey {
			out[key] = b
			continue
		}
		id, err := strconv.Atoi(key)
		_, inStock := withStock[id]
		inStock = inStock && err == nil
		switch behavior {
		case config.BehaviorDim:
			has := inStock
			b.HasStock = &has
			out[key] = b
		default:
			if inStock {
				out[key] = b
			}
		}
	}
	return out
}

// FallbackProvider asks each provider in turn and returns the first answer
// that did not fail. Failures are logged, never returned unless every
// provider failed.
type FallbackProvider struct {
	providers []SalabilityProvider
	log       *logger.Logger
}

func NewFallbackProvider(log *logger.Logger, providers ...SalabilityProvider) *FallbackProvider {
	if log == nil {
		log = logger.Default()
	}
	return &FallbackProvider{providers: providers, log: log}
}

// NewSalabilityChain puts msi in front of legacy when the capability probe
// found the multi-source tables.
func NewSalabilityChain(log *logger.Logger, msiAvailable bool, msi, legacy SalabilityProvider) *FallbackProvider {
	if msiAvailable && msi != nil {
		return NewFallbackProvider(log, msi, legacy)
	}
	return NewFallbackProvider(log, legacy)
}

func (f *FallbackProvider) Name() string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

func (f *FallbackProvider) Salable(ctx context.Context, children []gallery.Child) (map[uint]bool, error) {
	var errs []error
	for _, p := range f.providers {
		res, err := p.Salable(ctx, children)
		if err == nil {
			return res, nil
		}
		f.log.Warn(f.log.WithField(ctx, "provider", p.Name()), "salability provider failed, falling back", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no salability provider")
	}
	return nil, multierr.Combine(errs...)
}

// StockOf pairs children with salable answers.
func StockOf(children []gallery.Child, salable map[uint]bool) []ChildSalability {
	out := make([]ChildSalability, len(children))
	for i, c := range children {
		out[i] = ChildSalability{ColorOptionID: c.ColorOptionID, Salable: salable[c.ID]}
	}
	return out
}
