package watcher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/alright-hq/alright-client/internal/logger"
	"github.com/alright-hq/alright-client/internal/storage"
	"github.com/alright-hq/alright-client/pkg/alright"
	"github.com/alright-hq/alright-client/pkg/publishers"
)

// Options carries the optional collaborators of a Service.
type Options struct {
	Enricher DishEnricher
	History  History
	// Source is recorded on every event, usually the API base URL.
	Source string
	Logger logger.Logger
}

// Service polls menus and announces new or edited ones.
type Service struct {
	source    MenuSource
	publisher EventPublisher
	enricher  DishEnricher
	history   History
	name      string
	log       logger.Logger
}

// NewService wires a watcher around a menu source and a publisher.
func NewService(source MenuSource, publisher EventPublisher, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		source:    source,
		publisher: publisher,
		enricher:  opts.Enricher,
		history:   opts.History,
		name:      opts.Source,
		log:       log,
	}
}

// Run executes one pass over dates. Per-date failures are joined.
func (s *Service) Run(ctx context.Context, dates []alright.Date) error {
	if s == nil || s.source == nil || s.publisher == nil {
		return fmt.Errorf("watcher service is not initialized")
	}
	if len(dates) == 0 {
		return fmt.Errorf("no dates configured for watching")
	}

	var errs []error
	for _, date := range dates {
		if ctx.Err() != nil {
			break
		}
		if err := s.runDate(ctx, date); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("menu watch failed", "watch_error", map[string]any{
				"date":  date.String(),
				"error": err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

func (s *Service) runDate(ctx context.Context, date alright.Date) error {
	menu, err := s.source.GetMenu(ctx, date)
	if err != nil {
		return fmt.Errorf("get menu %s: %w", date, err)
	}
	if len(menu.Dishes) == 0 {
		s.log.DebugObj("no menu available", "watch_skip", map[string]any{"date": date.String()})
		return nil
	}
	if menu.Date.IsZero() {
		menu.Date = date
	}

	date = menu.Date
	digest := MenuDigest(menu)
	prev, known := s.lastAnnouncement(date)
	if known && prev.Digest == digest {
		s.log.DebugObj("menu unchanged since last announcement", "watch_skip", map[string]any{
			"date":     date.String(),
			"revision": prev.Revision,
		})
		return nil
	}

	if s.enricher != nil {
		menu.Dishes = s.enricher.Enrich(ctx, menu.Dishes)
	}

	evt := publishers.NewMenuEvent(s.name, menu)
	if known {
		evt.Revision = prev.Revision + 1
	}
	delivered, pubErr := s.publisher.Publish(ctx, evt)
	if delivered == 0 {
		if pubErr == nil {
			pubErr = errors.New("no publisher accepted the event")
		}
		return fmt.Errorf("publish menu %s: %w", date, pubErr)
	}
	if pubErr != nil {
		s.log.WarnObj("menu partially published", "publish_partial", map[string]any{
			"date":      date.String(),
			"delivered": delivered,
			"error":     pubErr.Error(),
		})
	}

	if s.history != nil {
		rec := storage.Announcement{Digest: digest, Revision: evt.Revision}
		if err := s.history.RecordAnnouncement(date.String(), rec); err != nil {
			return fmt.Errorf("record menu %s: %w", date, err)
		}
	}

	s.log.InfoObj("menu announced", "watch_result", map[string]any{
		"date":      date.String(),
		"event_id":  evt.EventID,
		"revision":  evt.Revision,
		"dishes":    len(menu.Dishes),
		"delivered": delivered,
	})
	return nil
}

// lastAnnouncement reads the history for date. A failed lookup is logged
// and treated as unknown, so the menu is announced rather than dropped.
func (s *Service) lastAnnouncement(date alright.Date) (storage.Announcement, bool) {
	if s.history == nil {
		return storage.Announcement{}, false
	}
	prev, found, err := s.history.LastAnnouncement(date.String())
	if err != nil {
		s.log.WarnObj("menu history lookup failed", "history_error", map[string]any{
			"date":  date.String(),
			"error": err.Error(),
		})
		return storage.Announcement{}, false
	}
	return prev, found
}

// MenuDigest fingerprints the dishes of a menu by id and name, in order.
// Enriched fields do not take part, so enrichment never reads as an edit.
func MenuDigest(menu alright.MenuDTO) string {
	h := sha1.New()
	for _, d := range menu.Dishes {
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
		h.Write([]byte(d.Name))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DatesFrom returns the dates at the given day offsets from today.
func DatesFrom(today alright.Date, offsets []int) []alright.Date {
	out := make([]alright.Date, 0, len(offsets))
	for _, off := range offsets {
		out = append(out, today.AddDays(off))
	}
	return out
}
