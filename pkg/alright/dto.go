package alright

import (
	"fmt"
	"strings"
)

// DishCategory classifies a dish within a menu.
type DishCategory int

const (
	Entry DishCategory = iota
	Main
	Side
)

var categoryNames = [...]string{
	Entry: "Primo",
	Main:  "Secondo",
	Side:  "Contorno",
}

// route segments used by the per-category dish listing endpoints
var categorySegments = [...]string{
	Entry: "entries",
	Main:  "maincourses",
	Side:  "sidedishes",
}

// String returns the wire name of the category.
func (c DishCategory) String() string {
	if c < Entry || c > Side {
		return fmt.Sprintf("DishCategory(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseDishCategory maps a wire name ("Primo", "Secondo", "Contorno") to a category.
func ParseDishCategory(s string) (DishCategory, error) {
	s = strings.TrimSpace(s)
	for i, name := range categoryNames {
		if name == s {
			return DishCategory(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownCategory, s)
}

// Segment returns the route segment of the category listing endpoint.
func (c DishCategory) Segment() string {
	if c < Entry || c > Side {
		return ""
	}
	return categorySegments[c]
}

// ParseCategorySegment maps a route segment ("entries", ...) back to a category.
func ParseCategorySegment(seg string) (DishCategory, error) {
	seg = strings.ToLower(strings.TrimSpace(seg))
	for i, s := range categorySegments {
		if s == seg {
			return DishCategory(i), nil
		}
	}
	return 0, fmt.Errorf("%w segment %q", ErrUnknownCategory, seg)
}

// MarshalText implements encoding.TextMarshaler.
func (c DishCategory) MarshalText() ([]byte, error) {
	if c < Entry || c > Side {
		return nil, fmt.Errorf("%w %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *DishCategory) UnmarshalText(b []byte) error {
	v, err := ParseDishCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// DishDTO is a dish as served by the canteen.
type DishDTO struct {
	Name        string       `json:"name" yaml:"name"`
	Category    DishCategory `json:"category" yaml:"category"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	ID          string       `json:"id" yaml:"id"`
	PictureURL  string       `json:"pictureUrl,omitempty" yaml:"pictureUrl,omitempty"`
}

// IsZero reports whether d is the default dish.
func (d DishDTO) IsZero() bool { return d == DishDTO{} }

// MenuDTO is the list of dishes served on a date.
type MenuDTO struct {
	Date   Date      `json:"date" yaml:"date"`
	Dishes []DishDTO `json:"dishes" yaml:"dishes"`
}

// ByCategory returns the dishes of the given category in menu order.
func (m MenuDTO) ByCategory(c DishCategory) []DishDTO {
	var out []DishDTO
	for _, d := range m.Dishes {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// ConsumerDTO describes a canteen customer.
type ConsumerDTO struct {
	Name        string `json:"name" yaml:"name"`
	ID          string `json:"id" yaml:"id"`
	HasPriority bool   `json:"hasPriority" yaml:"hasPriority"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusCanceled OrderStatus = "CANCELED"
	StatusFinished OrderStatus = "FINISHED"
)

// ParseOrderStatus validates a wire status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.TrimSpace(s)); st {
	case StatusPending, StatusCanceled, StatusFinished:
		return st, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownStatus, s)
	}
}

// Order is a consumer's request for a set of dishes.
type Order struct {
	ID         string      `json:"id" yaml:"id"`
	Status     OrderStatus `json:"status" yaml:"status"`
	ConsumerID string      `json:"consumerId" yaml:"consumerId"`
	DishIDs    []string    `json:"dishIds" yaml:"dishIds"`
}

// IsZero reports whether o is the default order.
func (o Order) IsZero() bool {
	return o.ID == "" && o.Status == "" && o.ConsumerID == "" && len(o.DishIDs) == 0
}
