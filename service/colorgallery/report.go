package colorgallery

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Report is the audit trail of one batch run (propagate, clean, migrate).
type Report struct {
	RunID     string    `json:"run_id"`
	Operation string    `json:"operation"`
	ProductID uint      `json:"product_id,omitempty"`
	DryRun    bool      `json:"dry_run"`
	StartedAt time.Time `json:"started_at"`
	Actions   []string  `json:"actions"`
	Errors    []string  `json:"errors"`
	Counts    Counts    `json:"counts"`

	errs []error
}

// Counts summarizes a run.
type Counts struct {
	ChildrenProcessed int `json:"children_processed"`
	ChildrenChanged   int `json:"children_changed"`
	ChildrenSkipped   int `json:"children_skipped"`
	ChildrenFailed    int `json:"children_failed"`
	MediaLinked       int `json:"media_linked"`
	MediaSkipped      int `json:"media_skipped"`
	MediaRemoved      int `json:"media_removed"`
	TagsUpdated       int `json:"tags_updated"`
}

func (c *Counts) add(o Counts) {
	c.ChildrenProcessed += o.ChildrenProcessed
	c.ChildrenChanged += o.ChildrenChanged
	c.ChildrenSkipped += o.ChildrenSkipped
	c.ChildrenFailed += o.ChildrenFailed
	c.MediaLinked += o.MediaLinked
	c.MediaSkipped += o.MediaSkipped
	c.MediaRemoved += o.MediaRemoved
	c.TagsUpdated += o.TagsUpdated
}

func NewReport(operation string, productID uint, dryRun bool) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Operation: operation,
		ProductID: productID,
		DryRun:    dryRun,
		StartedAt: time.Now(),
		Actions:   []string{},
		Errors:    []string{},
	}
}

func (r *Report) Action(format string, args ...interface{}) {
	r.Actions = append(r.Actions, fmt.Sprintf(format, args...))
}

func (r *Report) Error(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
	r.errs = append(r.errs, err)
}

func (r *Report) HasErrors() bool {
	return len(r.errs) > 0
}

// Err combines every recorded error; nil when the run was clean.
func (r *Report) Err() error {
	return multierr.Combine(r.errs...)
}

// Merge appends other's actions, errors and counts.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Actions = append(r.Actions, other.Actions...)
	r.Counts.add(other.Counts)
	for _, err := range other.errs {
		r.Error(err)
	}
}

// childLog buffers one child's trail until its transaction outcome is known.
type childLog struct {
	actions []string
	errs    []error
	counts  Counts
}

func (c *childLog) action(format string, args ...interface{}) {
	c.actions = append(c.actions, fmt.Sprintf(format, args...))
}

func (c *childLog) error(err error) {
	c.errs = append(c.errs, err)
}

func (r *Report) commit(c *childLog) {
	r.Actions = append(r.Actions, c.actions...)
	for _, err := range c.errs {
		r.Error(err)
	}
	r.Counts.add(c.counts)
}

func (r *Report) rollback(c *childLog, childID uint, err error) {
	for _, e := range c.errs {
		r.Error(e)
	}
	r.Error(fmt.Errorf("child %d: rolled back: %w", childID, err))
	r.Counts.ChildrenProcessed++
	r.Counts.ChildrenFailed++
}
