package alright

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alright-hq/alright-client/pkg/httpclient"
)

// ResponseMode selects how read operations treat response bodies.
type ResponseMode string

const (
	// ModeDecode decodes every read response with the fragment decoders.
	ModeDecode ResponseMode = "decode"
	// ModeStub fetches but discards responses for everything except menus,
	// returning empty values as the first service clients did.
	ModeStub ResponseMode = "stub"
)

// ParseResponseMode validates a mode string; empty selects ModeDecode.
func ParseResponseMode(s string) (ResponseMode, error) {
	switch m := ResponseMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeDecode, nil
	case ModeDecode, ModeStub:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported response mode %q", s)
	}
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

// Options tunes a Client. Zero values select defaults.
type Options struct {
	Headers httpclient.Header
	Mode    ResponseMode
	Logger  Logger
	Now     func() time.Time
}

func normalizeOptions(opts Options) Options {
	if opts.Mode == "" {
		opts.Mode = ModeDecode
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// Client maps canteen operations onto REST calls. Every operation issues
// exactly one transport call. Transport failures and non-200 responses
// yield zero values; malformed bodies yield a *DecodeError.
// A Client holds no mutable state and is safe for concurrent use.
type Client struct {
	transport httpclient.Transport
	headers   httpclient.Header
	mode      ResponseMode
	log       Logger
	now       func() time.Time
}

// NewClient wraps a caller-owned transport.
func NewClient(transport httpclient.Transport, opts Options) (*Client, error) {
	if transport == nil {
		return nil, errors.New("transport must not be nil")
	}
	opts = normalizeOptions(opts)
	if _, err := ParseResponseMode(string(opts.Mode)); err != nil {
		return nil, err
	}

	hdr := make(httpclient.Header, len(opts.Headers))
	for k, v := range opts.Headers {
		hdr[k] = v
	}
	return &Client{
		transport: transport,
		headers:   hdr,
		mode:      opts.Mode,
		log:       opts.Logger,
		now:       opts.Now,
	}, nil
}

// Mode returns the client's response mode.
func (c *Client) Mode() ResponseMode { return c.mode }

// Today returns the current date according to the client's clock.
func (c *Client) Today() Date { return DateOf(c.now()) }

// GetMenu fetches the menu for date; the zero Date means today.
func (c *Client) GetMenu(ctx context.Context, date Date) (MenuDTO, error) {
	date, err := c.orToday(date)
	if err != nil {
		return MenuDTO{}, fmt.Errorf("get menu: %w", err)
	}
	path := menuPath(date)
	body, ok := c.get(ctx, path)
	if !ok {
		return MenuDTO{}, nil
	}
	menu, err := DecodeMenu(body)
	if err != nil {
		return MenuDTO{}, withPath(err, path)
	}
	return menu, nil
}

// GetTodayMenu fetches today's menu.
func (c *Client) GetTodayMenu(ctx context.Context) (MenuDTO, error) {
	return c.GetMenu(ctx, c.Today())
}

// GetTomorrowMenu fetches tomorrow's menu.
func (c *Client) GetTomorrowMenu(ctx context.Context) (MenuDTO, error) {
	return c.GetMenu(ctx, c.Today().AddDays(1))
}

// GetYesterdayMenu fetches yesterday's menu.
func (c *Client) GetYesterdayMenu(ctx context.Context) (MenuDTO, error) {
	return c.GetMenu(ctx, c.Today().AddDays(-1))
}

// GetEntries fetches the first courses served on date.
func (c *Client) GetEntries(ctx context.Context, date Date) ([]DishDTO, error) {
	return c.getCategory(ctx, date, Entry)
}

// GetMainCourses fetches the main courses served on date.
func (c *Client) GetMainCourses(ctx context.Context, date Date) ([]DishDTO, error) {
	return c.getCategory(ctx, date, Main)
}

// GetSideDishes fetches the side dishes served on date.
func (c *Client) GetSideDishes(ctx context.Context, date Date) ([]DishDTO, error) {
	return c.getCategory(ctx, date, Side)
}

func (c *Client) getCategory(ctx context.Context, date Date, cat DishCategory) ([]DishDTO, error) {
	date, err := c.orToday(date)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", cat.Segment(), err)
	}
	path := categoryDishesPath(date, cat)
	body, ok := c.get(ctx, path)
	if !ok || c.mode == ModeStub {
		return nil, nil
	}
	dishes, err := DecodeDishes(body)
	if err != nil {
		return nil, withPath(err, path)
	}
	return dishes, nil
}

// GetDish fetches a single dish by id.
func (c *Client) GetDish(ctx context.Context, id string) (DishDTO, error) {
	if strings.TrimSpace(id) == "" {
		return DishDTO{}, fmt.Errorf("get dish: %w", ErrMissingID)
	}
	path := dishPath(id)
	body, ok := c.get(ctx, path)
	if !ok || c.mode == ModeStub {
		return DishDTO{}, nil
	}
	dish, err := DecodeDish(body)
	if err != nil {
		return DishDTO{}, withPath(err, path)
	}
	return dish, nil
}

// GetAllergens fetches the allergen names of a dish.
func (c *Client) GetAllergens(ctx context.Context, dishID string) ([]string, error) {
	if strings.TrimSpace(dishID) == "" {
		return nil, fmt.Errorf("get allergens: %w", ErrMissingID)
	}
	path := allergensPath(dishID)
	body, ok := c.get(ctx, path)
	if !ok || c.mode == ModeStub {
		return nil, nil
	}
	allergens, err := DecodeAllergens(body)
	if err != nil {
		return nil, withPath(err, path)
	}
	return allergens, nil
}

// OrderDishes places an order for consumerID. It returns an error only when
// the arguments are invalid; the call itself is fire-and-forget and a
// transport failure is logged.
func (c *Client) OrderDishes(ctx context.Context, consumerID string, dishIDs []string) error {
	if strings.TrimSpace(consumerID) == "" {
		return fmt.Errorf("order dishes: consumer %w", ErrMissingID)
	}
	payload, err := EncodeDishIDs(dishIDs)
	if err != nil {
		return fmt.Errorf("order dishes: %w", err)
	}

	path := orderDishesPath(consumerID)
	resp, err := c.transport.Post(ctx, path, c.headers, payload)
	if err != nil || resp == nil || resp.Code < 200 || resp.Code > 299 {
		c.log.WarnObj("order not accepted", "order_failure", failureFields("POST", path, resp, err))
		return nil
	}
	c.log.DebugObj("order placed", "order_meta", map[string]any{
		"consumer_id": consumerID,
		"dish_count":  len(dishIDs),
		"status":      resp.Code,
	})
	return nil
}

// GetOrders fetches the orders placed for date.
func (c *Client) GetOrders(ctx context.Context, date Date) ([]Order, error) {
	date, err := c.orToday(date)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	return c.getOrderList(ctx, ordersByDatePath(date))
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return Order{}, fmt.Errorf("get order: %w", ErrMissingID)
	}
	path := orderPath(orderID)
	body, ok := c.get(ctx, path)
	if !ok || c.mode == ModeStub {
		return Order{}, nil
	}
	order, err := DecodeOrder(body)
	if err != nil {
		return Order{}, withPath(err, path)
	}
	return order, nil
}

// GetPendingOrders fetches today's orders still in PENDING state.
func (c *Client) GetPendingOrders(ctx context.Context) ([]Order, error) {
	return c.getOrderList(ctx, ordersByStatusPath(c.Today(), StatusPending))
}

func (c *Client) getOrderList(ctx context.Context, path string) ([]Order, error) {
	body, ok := c.get(ctx, path)
	if !ok || c.mode == ModeStub {
		return nil, nil
	}
	orders, err := DecodeOrders(body)
	if err != nil {
		return nil, withPath(err, path)
	}
	return orders, nil
}

// get issues one GET and reports whether a 200 body is available.
func (c *Client) get(ctx context.Context, path string) (string, bool) {
	resp, err := c.transport.Get(ctx, path, c.headers)
	if err != nil || !resp.OK() {
		c.log.WarnObj("canteen read returned no data", "read_failure", failureFields("GET", path, resp, err))
		return "", false
	}
	return resp.Body, true
}

// orToday resolves the zero Date to today and rejects impossible dates, so
// no request is built for a day that cannot exist.
func (c *Client) orToday(d Date) (Date, error) {
	if d.IsZero() {
		return c.Today(), nil
	}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

func failureFields(method, path string, resp *httpclient.Response, err error) map[string]any {
	fields := map[string]any{
		"method": method,
		"path":   path,
	}
	if resp != nil {
		fields["status"] = resp.Code
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	return fields
}

func withPath(err error, path string) error {
	var de *DecodeError
	if errors.As(err, &de) {
		de.Path = path
	}
	return err
}
