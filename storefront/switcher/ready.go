package switcher

import (
	"context"
	"errors"
	"time"
)

var ErrNotReady = errors.New("switcher: gallery widget never became ready")

// ReadySignal calls back once the gallery widget can be driven.
type ReadySignal interface {
	OnReady(ctx context.Context, cb func()) error
}

// PollingReady polls Probe every Interval, at most MaxAttempts times.
type PollingReady struct {
	Probe       func() bool
	Interval    time.Duration
	MaxAttempts int
}

func (p PollingReady) OnReady(ctx context.Context, cb func()) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if p.Probe == nil || p.Probe() {
			cb()
			return nil
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return ErrNotReady
}

// DeferredAdapter waits for Ready before rendering. Events superseded while
// waiting are dropped.
type DeferredAdapter struct {
	Adapter
	Ready   ReadySignal
	Timeout time.Duration
}

func (d DeferredAdapter) Render(ev Event) error {
	ctx := context.Background()
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	var renderErr error
	err := d.Ready.OnReady(ctx, func() {
		if ev.Stale() {
			return
		}
		renderErr = d.Adapter.Render(ev)
	})
	if err != nil {
		return err
	}
	return renderErr
}
