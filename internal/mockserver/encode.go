package mockserver

import (
	"strings"

	"github.com/alright-hq/alright-client/pkg/alright"
)

// The canteen service speaks a loose object notation rather than JSON. These
// writers reproduce it closely enough for the client's decoders.

func writeDish(b *strings.Builder, d alright.DishDTO) {
	b.WriteString(`{"id": "` + d.ID + `", "name": "` + d.Name + `", "category": "` + d.Category.String() + `"`)
	if d.Description != "" {
		b.WriteString(`, "description": "` + d.Description + `"`)
	}
	if d.PictureURL != "" {
		b.WriteString(`, "pictureUrl": "` + d.PictureURL + `"`)
	}
	b.WriteString("}")
}

func encodeDishes(dishes []alright.DishDTO) string {
	var b strings.Builder
	b.WriteString("[")
	for _, d := range dishes {
		writeDish(&b, d)
	}
	b.WriteString("]")
	return b.String()
}

func encodeDish(d alright.DishDTO) string {
	var b strings.Builder
	writeDish(&b, d)
	return b.String()
}

func encodeMenu(date alright.Date, dishes []alright.DishDTO) string {
	return `"date": "` + date.String() + `"menu: ` + encodeDishes(dishes)
}

func encodeList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = `"` + it + `"`
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

func writeOrder(b *strings.Builder, o alright.Order) {
	b.WriteString(`{"id": "` + o.ID + `", "status": "` + string(o.Status) + `", "consumerId": "` + o.ConsumerID + `", "dishIds": [`)
	b.WriteString(strings.Join(o.DishIDs, ","))
	b.WriteString("]}")
}

func encodeOrder(o alright.Order) string {
	var b strings.Builder
	writeOrder(&b, o)
	return b.String()
}

func encodeOrders(orders []alright.Order) string {
	var b strings.Builder
	b.WriteString("[")
	for _, o := range orders {
		writeOrder(&b, o)
	}
	b.WriteString("]")
	return b.String()
}
