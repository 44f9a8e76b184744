package colorgallery

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gallery.GO/core/colortag"
	"gallery.GO/core/logger"
	"gallery.GO/core/metrics"
	"gallery.GO/model/gallery"
)

// PropagateOptions control one propagation run.
type PropagateOptions struct {
	CleanFirst bool
	Roles      []string
	DryRun     bool
}

// PropagationEngine copies parent media onto variant children. Engines hold
// no per-run state and may run concurrently for different products.
type PropagationEngine struct {
	store   gallery.MediaStore
	metrics *metrics.GalleryMetrics
	log     *logger.Logger
}

func NewPropagationEngine(store gallery.MediaStore, m *metrics.GalleryMetrics, log *logger.Logger) *PropagationEngine {
	if log == nil {
		log = logger.Default()
	}
	return &PropagationEngine{store: store, metrics: m, log: log}
}

type candidate struct {
	rec     gallery.MediaRecord
	generic bool
}

// candidatesFor returns the child's color media followed by generic media,
// files listed once.
func candidatesFor(parent gallery.ColorMediaMap, colorOptionID int) []candidate {
	var out []candidate
	seen := make(map[string]struct{})
	add := func(b gallery.Bucket, generic bool) {
		for _, rec := range b.Records() {
			if _, dup := seen[rec.File]; dup {
				continue
			}
			seen[rec.File] = struct{}{}
			out = append(out, candidate{rec: rec, generic: generic})
		}
	}
	add(parent[strconv.Itoa(colorOptionID)], false)
	add(parent.Generic(), true)
	return out
}

// Propagate links each child's color media plus generic media onto it. Each
// child is one atomic unit; one failing child never affects another.
func (e *PropagationEngine) Propagate(ctx context.Context, attributeID int, parent gallery.ColorMediaMap, children []gallery.Child, opts PropagateOptions) *Report {
	report := NewReport("propagate", 0, opts.DryRun)
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			report.Error(err)
			break
		}
		if child.ColorOptionID == 0 {
			report.Action("child %d (%s): no color value, skipped", child.ID, child.SKU)
			report.Counts.ChildrenSkipped++
			e.metrics.ChildDone("skipped")
			continue
		}
		cands := candidatesFor(parent, child.ColorOptionID)
		if len(cands) == 0 {
			report.Action("child %d (%s): no media for color %d, skipped", child.ID, child.SKU, child.ColorOptionID)
			report.Counts.ChildrenSkipped++
			e.metrics.ChildDone("skipped")
			continue
		}

		cl := &childLog{}
		var err error
		if opts.DryRun {
			err = e.propagateChild(ctx, e.store, attributeID, child, cands, opts, cl)
		} else {
			err = e.store.WithinTx(ctx, func(tx gallery.MediaStore) error {
				return e.propagateChild(ctx, tx, attributeID, child, cands, opts, cl)
			})
		}
		if err != nil {
			report.rollback(cl, child.ID, err)
			e.metrics.ChildDone("failed")
			e.log.Error(e.log.WithProduct(ctx, child.ID), "propagation rolled back", err)
			continue
		}
		report.commit(cl)
		e.metrics.MediaLinked(cl.counts.MediaLinked)
		if cl.counts.ChildrenChanged > 0 {
			e.metrics.ChildDone("changed")
		} else {
			e.metrics.ChildDone("unchanged")
		}
	}
	e.metrics.Errors("propagate", len(report.Errors))
	return report
}

// propagateChild runs the same decisions for dry and real runs; only the
// store mutations are skipped when dry.
func (e *PropagationEngine) propagateChild(ctx context.Context, store gallery.MediaStore, attributeID int, child gallery.Child, cands []candidate, opts PropagateOptions, cl *childLog) error {
	dry := opts.DryRun
	existing, err := store.ListMediaRecords(ctx, child.ID, 0)
	if err != nil {
		return err
	}
	// store-scoped rows count as present too
	files, err := store.MediaFiles(ctx, child.ID)
	if err != nil {
		return err
	}
	changed := false

	if opts.CleanFirst {
		if dry {
			n := distinctIDs(existing)
			cl.action("child %d: would remove %d media", child.ID, n)
			cl.counts.MediaRemoved += n
			changed = n > 0
		} else {
			n, err := store.DeleteAllMedia(ctx, child.ID)
			if err != nil {
				return fmt.Errorf("clean: %w", err)
			}
			cl.action("child %d: removed %d media", child.ID, n)
			cl.counts.MediaRemoved += n
			changed = n > 0
		}
		// later duplicate checks must run against the emptied gallery
		existing, files = nil, nil
	}

	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f] = struct{}{}
	}
	mediaCount := distinctIDs(existing)
	tag := colortag.Build(attributeID, []int{child.ColorOptionID})

	for _, c := range cands {
		if _, ok := present[c.rec.File]; ok {
			cl.action("child %d: %s already present, skipped", child.ID, c.rec.File)
			cl.counts.MediaSkipped++
			continue
		}
		recTag := tag
		if c.generic {
			recTag = ""
		}
		withRoles := mediaCount == 0 && len(opts.Roles) > 0

		if dry {
			cl.action("child %d: would link %s", child.ID, c.rec.File)
			if withRoles {
				cl.action("child %d: would assign roles %v to %s", child.ID, opts.Roles, c.rec.File)
			}
		} else {
			err := store.WithinTx(ctx, func(tx gallery.MediaStore) error {
				linked, err := tx.LinkMedia(ctx, child.ID, c.rec, recTag)
				if err != nil {
					return err
				}
				if withRoles {
					return tx.AssignRoles(ctx, child.ID, linked.File, opts.Roles)
				}
				return nil
			})
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				cl.error(fmt.Errorf("child %d media %d (%s): %w", child.ID, c.rec.ID, c.rec.File, err))
				continue
			}
			cl.action("child %d: linked %s", child.ID, c.rec.File)
			if withRoles {
				cl.action("child %d: assigned roles %v to %s", child.ID, opts.Roles, c.rec.File)
			}
		}
		present[c.rec.File] = struct{}{}
		mediaCount++
		cl.counts.MediaLinked++
		changed = true
	}

	cl.counts.ChildrenProcessed++
	if !changed {
		return nil
	}
	cl.counts.ChildrenChanged++
	if dry {
		return nil
	}
	if err := store.Touch(ctx, child.ID); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// CleanChildren removes every media record and image role of each child.
func (e *PropagationEngine) CleanChildren(ctx context.Context, children []gallery.Child, roles []string, dryRun bool) *Report {
	report := NewReport("clean", 0, dryRun)
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			report.Error(err)
			break
		}
		cl := &childLog{}
		var err error
		if dryRun {
			err = e.cleanChild(ctx, e.store, child, roles, true, cl)
		} else {
			err = e.store.WithinTx(ctx, func(tx gallery.MediaStore) error {
				return e.cleanChild(ctx, tx, child, roles, false, cl)
			})
		}
		if err != nil {
			report.rollback(cl, child.ID, err)
			e.metrics.ChildDone("failed")
			continue
		}
		report.commit(cl)
		e.metrics.ChildDone("cleaned")
	}
	e.metrics.Errors("clean", len(report.Errors))
	return report
}

func (e *PropagationEngine) cleanChild(ctx context.Context, store gallery.MediaStore, child gallery.Child, roles []string, dry bool, cl *childLog) error {
	cl.counts.ChildrenProcessed++
	if dry {
		existing, err := store.ListMediaRecords(ctx, child.ID, 0)
		if err != nil {
			return err
		}
		cl.action("child %d (%s): would remove %d media and reset roles %v", child.ID, child.SKU, distinctIDs(existing), roles)
		return nil
	}
	n, err := store.DeleteAllMedia(ctx, child.ID)
	if err != nil {
		return err
	}
	if err := store.ResetRoleAttributes(ctx, child.ID, roles); err != nil {
		return err
	}
	if err := store.Touch(ctx, child.ID); err != nil {
		return err
	}
	cl.counts.MediaRemoved += n
	cl.counts.ChildrenChanged++
	cl.action("child %d (%s): removed %d media and reset roles %v", child.ID, child.SKU, n, roles)
	return nil
}

func distinctIDs(recs []gallery.MediaRecord) int {
	seen := make(map[uint]struct{}, len(recs))
	for _, r := range recs {
		seen[r.ID] = struct{}{}
	}
	return len(seen)
}
