package switcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"gallery.GO/core/logger"
)

var (
	ErrNotInitialized     = errors.New("switcher: SwitchColor before Init")
	ErrAlreadyInitialized = errors.New("switcher: Init called twice")
)

// URLWriter replaces the visible page URL without adding a history entry.
type URLWriter interface {
	Replace(rawURL string)
}

// Event is one filtering notification.
type Event struct {
	Images        []Media
	ColorOptionID *int
	IsInitial     bool
	Generation    uint64

	gen *atomic.Uint64
}

// Stale reports whether a later switch superseded this event.
func (e Event) Stale() bool {
	return e.gen != nil && e.gen.Load() != e.Generation
}

// Switcher is the color state of one product view.
type Switcher struct {
	cfg     Config
	media   []Media
	adapter Adapter
	urls    URLWriter
	log     *logger.Logger

	mu          sync.Mutex
	initialized bool
	current     *int
	url         string
	gen         atomic.Uint64
}

// New builds a switcher over the page's full media list. adapter and urls may
// be nil.
func New(cfg Config, media []Media, adapter Adapter, urls URLWriter) *Switcher {
	return &Switcher{
		cfg:     cfg,
		media:   append([]Media(nil), media...),
		adapter: adapter,
		urls:    urls,
		log:     logger.Default(),
	}
}

// Init applies the default color for rawURL and emits the initial event.
func (s *Switcher) Init(rawURL string) (Event, error) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return Event{}, ErrAlreadyInitialized
	}
	s.initialized = true
	s.url = rawURL
	s.mu.Unlock()
	return s.SwitchColor(s.cfg.DefaultColor(rawURL), true)
}

// SwitchColor filters the gallery for optionID (nil shows every color) and
// emits the result. A later call supersedes an event still being rendered.
func (s *Switcher) SwitchColor(optionID *int, isInitial bool) (Event, error) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return Event{}, ErrNotInitialized
	}
	if optionID != nil {
		id := *optionID
		optionID = &id
	}
	s.current = optionID
	ev := Event{
		Images:        Filter(s.cfg, s.media, optionID),
		ColorOptionID: optionID,
		IsInitial:     isInitial,
		Generation:    s.gen.Add(1),
		gen:           &s.gen,
	}
	var newURL string
	rewrite := s.cfg.UpdateURLOnSelect && !isInitial && s.urls != nil
	if rewrite {
		newURL = WithColor(s.url, s.cfg, optionID)
		s.url = newURL
	}
	s.mu.Unlock()

	if rewrite {
		s.urls.Replace(newURL)
	}
	if s.adapter != nil {
		if err := s.adapter.Render(ev); err != nil {
			s.log.Warn(s.log.WithField(context.Background(), "adapter", s.adapter.Name()), "gallery render failed", err)
		}
	}
	return ev, nil
}

// Current returns the selected color, nil when no filter is applied.
func (s *Switcher) Current() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// Filter returns the media shown for optionID without changing state.
func (s *Switcher) Filter(optionID *int) []Media {
	return Filter(s.cfg, s.media, optionID)
}
