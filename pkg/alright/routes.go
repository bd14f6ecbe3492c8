package alright

import (
	"net/url"
	"strings"
)

// Route builders for the canteen REST service. Paths are relative and
// identifiers are path-escaped; dates use the unpadded D-M-YYYY form.

func menuPath(date Date) string {
	return "menu/date/" + date.String()
}

func categoryDishesPath(date Date, c DishCategory) string {
	return menuPath(date) + "/dishes/" + c.Segment()
}

func dishPath(id string) string {
	return "dishes/id/" + escape(id)
}

func allergensPath(dishID string) string {
	return dishPath(dishID) + "/alergenics"
}

func orderDishesPath(consumerID string) string {
	return "order/consumer/id/" + escape(consumerID) + "/dishes"
}

func ordersByDatePath(date Date) string {
	return "order/date/" + date.String()
}

func orderPath(id string) string {
	return "order/id/" + escape(id)
}

func ordersByStatusPath(date Date, status OrderStatus) string {
	return ordersByDatePath(date) + "/status/" + string(status)
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
