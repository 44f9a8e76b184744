package colorgallery

import (
	"context"
	"fmt"

	"gallery.GO/core/colortag"
	"gallery.GO/model/gallery"
)

// MigrateTags tags parent media with the colors of the children that carry
// the same file. Existing ids of the attribute are kept.
func (e *PropagationEngine) MigrateTags(ctx context.Context, parentID uint, attributeID int, parentMedia []gallery.MediaRecord, children []gallery.Child, dryRun bool) *Report {
	report := NewReport("migrate", parentID, dryRun)

	byFile := make(map[string][]gallery.MediaRecord)
	var order []uint
	records := make(map[uint]gallery.MediaRecord)
	for _, rec := range parentMedia {
		if _, seen := records[rec.ID]; seen {
			continue
		}
		records[rec.ID] = rec
		order = append(order, rec.ID)
		byFile[rec.File] = append(byFile[rec.File], rec)
	}

	pending := make(map[uint][]int)
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			report.Error(err)
			return report
		}
		if child.ColorOptionID == 0 {
			report.Action("child %d (%s): no color value, skipped", child.ID, child.SKU)
			report.Counts.ChildrenSkipped++
			continue
		}
		media, err := e.store.ListMediaRecords(ctx, child.ID, 0)
		if err != nil {
			report.Error(fmt.Errorf("child %d: %w", child.ID, err))
			report.Counts.ChildrenFailed++
			continue
		}
		report.Counts.ChildrenProcessed++
		for _, m := range media {
			for _, parentRec := range byFile[m.File] {
				pending[parentRec.ID] = append(pending[parentRec.ID], child.ColorOptionID)
			}
		}
	}

	for _, id := range order {
		ids, ok := pending[id]
		if !ok {
			continue
		}
		rec := records[id]
		tag := colortag.Merge(rec.ColorTag, attributeID, ids...)
		if colortag.Equal(tag, rec.ColorTag, attributeID) {
			report.Action("media %d (%s): already tagged %s", id, rec.File, tag)
			report.Counts.MediaSkipped++
			continue
		}
		if dryRun {
			report.Action("media %d (%s): would tag %s", id, rec.File, tag)
			report.Counts.TagsUpdated++
			continue
		}
		if err := e.store.SetColorTag(ctx, parentID, id, tag); err != nil {
			report.Error(fmt.Errorf("media %d (%s): %w", id, rec.File, err))
			continue
		}
		report.Action("media %d (%s): tagged %s", id, rec.File, tag)
		report.Counts.TagsUpdated++
	}
	e.metrics.Errors("migrate", len(report.Errors))
	return report
}
