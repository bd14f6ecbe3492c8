package alright

import (
	"fmt"
	"strings"
)

// The canteen service speaks a loose, JSON-looking format. The decoders here
// accept exactly that shape: flat objects, no escaping, no nesting beyond a
// bracketed list of bare values.

// menuPrefix is the fixed lead-in of a menu body, skipped before the date segment.
const menuPrefix = `"date":`

// DecodeDish decodes one flat dish object. A fragment lacking any of id,
// name or category yields the zero DishDTO and no error.
func DecodeDish(fragment string) (DishDTO, error) {
	d, err := decodeDish(fragment)
	if err != nil {
		return DishDTO{}, &DecodeError{Op: "dish", Err: err}
	}
	return d, nil
}

// DecodeDishes decodes a sequence of dish objects, keeping input order.
func DecodeDishes(body string) ([]DishDTO, error) {
	dishes, err := decodeDishList(body)
	if err != nil {
		return nil, &DecodeError{Op: "dishes", Err: err}
	}
	return dishes, nil
}

// DecodeMenu decodes a menu body: the "date": prefix, a D-M-YYYY date,
// then a [ followed by dish objects. An empty body yields the zero MenuDTO.
func DecodeMenu(body string) (MenuDTO, error) {
	body = strings.TrimLeft(body, " \t\r\n")
	if strings.TrimSpace(body) == "" {
		return MenuDTO{}, nil
	}
	if len(body) < len(menuPrefix) {
		return MenuDTO{}, &DecodeError{Op: "menu", Err: fmt.Errorf("%w: body shorter than date prefix", ErrMalformedBody)}
	}

	rest := body[len(menuPrefix):]
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return MenuDTO{}, &DecodeError{Op: "menu", Err: fmt.Errorf("%w: dish list not found", ErrMalformedBody)}
	}

	date, err := ParseDate(dateToken(rest[:open]))
	if err != nil {
		return MenuDTO{}, &DecodeError{Op: "menu", Err: err}
	}
	dishes, err := decodeDishList(rest[open+1:])
	if err != nil {
		return MenuDTO{}, &DecodeError{Op: "menu", Err: err}
	}
	return MenuDTO{Date: date, Dishes: dishes}, nil
}

// DecodeAllergens decodes a bracketed list of allergen names, e.g. [gluten,"eggs"].
func DecodeAllergens(body string) ([]string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	if strings.ContainsAny(body, "{}") {
		return nil, &DecodeError{Op: "allergens", Err: fmt.Errorf("%w: unexpected object", ErrMalformedBody)}
	}
	return splitList(body), nil
}

// DecodeOrder decodes one flat order object. A fragment lacking id or
// status yields the zero Order and no error.
func DecodeOrder(fragment string) (Order, error) {
	o, err := decodeOrder(fragment)
	if err != nil {
		return Order{}, &DecodeError{Op: "order", Err: err}
	}
	return o, nil
}

// DecodeOrders decodes a sequence of order objects, keeping input order.
func DecodeOrders(body string) ([]Order, error) {
	frags, err := splitFragments(body)
	if err != nil {
		return nil, &DecodeError{Op: "orders", Err: err}
	}
	if len(frags) == 0 {
		return nil, nil
	}
	orders := make([]Order, 0, len(frags))
	for i, frag := range frags {
		o, err := decodeOrder(frag)
		if err != nil {
			return nil, &DecodeError{Op: "orders", Err: fmt.Errorf("order %d: %w", i, err)}
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// reservedIDChars would change the shape of the order payload if written raw.
const reservedIDChars = ",[] \t\r\n\""

// EncodeDishIDs renders the order payload: ids joined by commas inside brackets.
// Surrounding spaces are trimmed; ids containing delimiters are rejected.
func EncodeDishIDs(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoDishes
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return "", fmt.Errorf("dish id at position %d: %w", i, ErrMissingID)
		}
		if strings.ContainsAny(id, reservedIDChars) {
			return "", fmt.Errorf("dish id %q at position %d: %w", id, i, ErrInvalidID)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id)
	}
	b.WriteByte(']')
	return b.String(), nil
}

func decodeDish(fragment string) (DishDTO, error) {
	fields := scanFields(fragment)
	id, hasID := fields["id"]
	name, hasName := fields["name"]
	cat, hasCat := fields["category"]
	if !hasID || !hasName || !hasCat {
		return DishDTO{}, nil
	}

	category, err := ParseDishCategory(cat)
	if err != nil {
		return DishDTO{}, err
	}
	return DishDTO{
		Name:        name,
		Category:    category,
		Description: fields["description"],
		ID:          id,
		PictureURL:  fields["pictureurl"],
	}, nil
}

func decodeDishList(body string) ([]DishDTO, error) {
	frags, err := splitFragments(body)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, nil
	}
	dishes := make([]DishDTO, 0, len(frags))
	for i, frag := range frags {
		d, err := decodeDish(frag)
		if err != nil {
			return nil, fmt.Errorf("dish %d: %w", i, err)
		}
		dishes = append(dishes, d)
	}
	return dishes, nil
}

func decodeOrder(fragment string) (Order, error) {
	fields := scanFields(fragment)
	id, hasID := fields["id"]
	rawStatus, hasStatus := fields["status"]
	if !hasID || !hasStatus {
		return Order{}, nil
	}

	status, err := ParseOrderStatus(rawStatus)
	if err != nil {
		return Order{}, err
	}
	return Order{
		ID:         id,
		Status:     status,
		ConsumerID: fields["consumerid"],
		DishIDs:    splitList(fields["dishids"]),
	}, nil
}

// scanFields walks a flat object with a key/value state machine. Commas end
// a pair unless inside brackets, the first colon ends a key, quotes and
// braces are dropped and tokens are trimmed. Keys are lower-cased; the last
// duplicate wins. The scan is bytewise, so values keep their bytes as sent,
// including invalid UTF-8.
func scanFields(fragment string) map[string]string {
	fields := make(map[string]string)
	var key, val strings.Builder
	readingKey := true
	depth := 0

	flush := func() {
		if !readingKey {
			if k := strings.ToLower(strings.TrimSpace(key.String())); k != "" {
				fields[k] = strings.TrimSpace(val.String())
			}
		}
		key.Reset()
		val.Reset()
		readingKey = true
		depth = 0
	}

	for i := 0; i < len(fragment); i++ {
		ch := fragment[i]
		switch {
		case ch == '"' || ch == '{' || ch == '}':
		case readingKey && ch == ':':
			readingKey = false
		case readingKey && ch == ',':
			flush()
		case readingKey:
			key.WriteByte(ch)
		case ch == ',' && depth == 0:
			flush()
		default:
			if ch == '[' {
				depth++
			} else if ch == ']' && depth > 0 {
				depth--
			}
			val.WriteByte(ch)
		}
	}
	flush()
	return fields
}

// splitFragments returns the contents of each top-level {...} in s.
func splitFragments(s string) ([]string, error) {
	var frags []string
	start := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if start >= 0 {
				return nil, fmt.Errorf("%w: nested object at offset %d", ErrMalformedBody, i)
			}
			start = i + 1
		case '}':
			if start < 0 {
				return nil, fmt.Errorf("%w: unmatched } at offset %d", ErrMalformedBody, i)
			}
			frags = append(frags, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		return nil, fmt.Errorf("%w: unterminated object", ErrMalformedBody)
	}
	return frags, nil
}

// splitList parses [a,"b", c] into its trimmed, unquoted, non-empty items.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(strings.ReplaceAll(item, `"`, ""))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// dateToken extracts the leading D-M-YYYY run of a date segment, which may
// carry quotes and a trailing label such as menu:.
func dateToken(segment string) string {
	clean := strings.TrimSpace(strings.ReplaceAll(segment, `"`, ""))
	end := strings.IndexFunc(clean, func(r rune) bool {
		return (r < '0' || r > '9') && r != '-'
	})
	if end <= 0 {
		return clean
	}
	return clean[:end]
}
