package watcher

import (
	"context"

	"github.com/alright-hq/alright-client/internal/storage"
	"github.com/alright-hq/alright-client/pkg/alright"
	"github.com/alright-hq/alright-client/pkg/publishers"
)

// MenuSource reads the menu of a day.
type MenuSource interface {
	GetMenu(ctx context.Context, date alright.Date) (alright.MenuDTO, error)
}

// DishEnricher fills in dish details missing from the menu.
type DishEnricher interface {
	Enrich(ctx context.Context, dishes []alright.DishDTO) []alright.DishDTO
}

// EventPublisher delivers menu events and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.MenuEvent) (int, error)
}

// History remembers the last announcement made for each menu date.
type History interface {
	LastAnnouncement(date string) (storage.Announcement, bool, error)
	RecordAnnouncement(date string, a storage.Announcement) error
}
