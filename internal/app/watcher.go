package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alright-hq/alright-client/internal/config"
	"github.com/alright-hq/alright-client/internal/enrich"
	"github.com/alright-hq/alright-client/internal/logger"
	"github.com/alright-hq/alright-client/internal/storage"
	"github.com/alright-hq/alright-client/internal/watcher"
	"github.com/alright-hq/alright-client/pkg/alright"
	"github.com/alright-hq/alright-client/pkg/publishers"
)

const enrichDelay = 200 * time.Millisecond

// Watcher is the menu watcher runtime. It owns the publishers and the
// announcement history and releases them when Run returns.
type Watcher struct {
	cfg      *config.Config
	client   *alright.Client
	service  *watcher.Service
	fanout   *publishers.Fanout
	store    storage.Store
	interval time.Duration
	log      logger.Logger
}

// NewWatcher builds a watcher runtime from config.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := NewAPIClient(cfg, "", log)
	if err != nil {
		return nil, err
	}

	pubFile, err := publishers.LoadFile(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}
	enabledPublishers := pubFile.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.DefaultRegistry().Build(ctx, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	summaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		summaries = append(summaries, map[string]string{"id": pubCfg.ID, "type": pubCfg.Type})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		MenuTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
		RedisAddr:       cfg.RedisAddr,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init storage: %w", err), fanout.Close())
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"menu_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	opts := watcher.Options{
		History: store,
		Source:  cfg.APIBaseURL,
		Logger:  log,
	}
	if cfg.DishPageURL != "" {
		pages, err := newTransport(cfg, cfg.DishPageURL, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("init dish page transport: %w", err), fanout.Close(), store.Close())
		}
		opts.Enricher = enrich.New(pages, cfg.DishPageURL, enrichDelay, log)
	}

	return &Watcher{
		cfg:      cfg,
		client:   client,
		service:  watcher.NewService(client, fanout, opts),
		fanout:   fanout,
		store:    store,
		interval: cfg.WatchInterval,
		log:      log,
	}, nil
}

// Run polls menus until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"publishers_count": w.fanout.Size(),
		"watch_interval":   w.interval.String(),
		"watch_days":       w.cfg.WatchDays,
		"response_mode":    string(w.client.Mode()),
	})

	if err := w.runOnce(ctx); err != nil {
		w.log.ErrorObj("initial watch failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled watch failed", "error", err)
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) error {
	start := time.Now()
	dates := watcher.DatesFrom(w.client.Today(), w.cfg.WatchDays)
	if err := w.service.Run(ctx, dates); err != nil {
		return err
	}
	w.log.InfoObj("watch completed", "watch_meta", map[string]any{
		"dates":      len(dates),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (w *Watcher) close() {
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publishers close failed", "error", err)
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
