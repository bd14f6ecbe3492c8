package publishers

import (
	"time"

	"github.com/alright-hq/alright-client/pkg/alright"
)

func sampleEvent() MenuEvent {
	return MenuEvent{
		EventID:  "evt-1",
		Source:   "http://canteen.local/api",
		MenuDate: "19-10-2026",
		Dishes: []alright.DishDTO{
			{ID: "id1", Name: "Carbonara", Category: alright.Entry},
		},
		CollectedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
}
