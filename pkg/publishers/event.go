package publishers

import (
	"strconv"
	"time"

	"github.com/alright-hq/alright-client/pkg/alright"
	"github.com/google/uuid"
)

// MenuEvent announces a menu downstream. Revision is 0 for the first
// announcement of a date and grows each time an edited menu for that date
// is announced again.
type MenuEvent struct {
	EventID     string            `json:"event_id"`
	Source      string            `json:"source"`
	MenuDate    string            `json:"menu_date"`
	Revision    int               `json:"revision"`
	Dishes      []alright.DishDTO `json:"dishes"`
	CollectedAt time.Time         `json:"collected_at"`
}

// NewMenuEvent constructs a MenuEvent for a menu fetched from source.
func NewMenuEvent(source string, menu alright.MenuDTO) MenuEvent {
	return MenuEvent{
		EventID:     uuid.NewString(),
		Source:      source,
		MenuDate:    menu.Date.String(),
		Dishes:      menu.Dishes,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are the routing hints attached to queue and topic messages.
// Empty values are omitted.
func (e MenuEvent) attributes() map[string]string {
	out := make(map[string]string, 4)
	for k, v := range map[string]string{
		"event_id":  e.EventID,
		"menu_date": e.MenuDate,
		"revision":  strconv.Itoa(e.Revision),
		"source":    e.Source,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
