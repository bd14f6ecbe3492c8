package alright

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alright-hq/alright-client/pkg/httpclient"
)

// mockTransport is a testify mock of httpclient.Transport. The context is
// not part of the recorded arguments.
type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) result(args mock.Arguments) (*httpclient.Response, error) {
	resp, _ := args.Get(0).(*httpclient.Response)
	return resp, args.Error(1)
}

func (m *mockTransport) Head(_ context.Context, path string, h httpclient.Header) (*httpclient.Response, error) {
	return m.result(m.Called(path, h))
}

func (m *mockTransport) Get(_ context.Context, path string, h httpclient.Header) (*httpclient.Response, error) {
	return m.result(m.Called(path, h))
}

func (m *mockTransport) Del(_ context.Context, path string, h httpclient.Header) (*httpclient.Response, error) {
	return m.result(m.Called(path, h))
}

func (m *mockTransport) Post(_ context.Context, path string, h httpclient.Header, data string) (*httpclient.Response, error) {
	return m.result(m.Called(path, h, data))
}

func (m *mockTransport) Put(_ context.Context, path string, h httpclient.Header, data string) (*httpclient.Response, error) {
	return m.result(m.Called(path, h, data))
}

func (m *mockTransport) PutBytes(_ context.Context, path string, h httpclient.Header, data []byte) (*httpclient.Response, error) {
	return m.result(m.Called(path, h, data))
}

// returnDefaultMenu answers every menu GET with the seven-dish fixture for date.
func (m *mockTransport) returnDefaultMenu(date Date) {
	m.On("Get", mock.MatchedBy(func(p string) bool { return strings.Contains(p, "menu") }), mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: menuBody(date)}, nil)
}

// activateError makes every GET fail with code.
func (m *mockTransport) activateError(code int) {
	m.On("Get", mock.Anything, mock.Anything).
		Return(&httpclient.Response{Code: code}, errors.New("request failed"))
}

// notFound answers one GET of path with 404.
func (m *mockTransport) notFound(path string) {
	m.On("Get", path, mock.Anything).Return(&httpclient.Response{Code: 404}, nil).Once()
}

// New Year's Eve pins tomorrow across a year boundary.
var fixedNow = time.Date(2026, 12, 31, 10, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, tr httpclient.Transport, mode ResponseMode) *Client {
	t.Helper()
	c, err := NewClient(tr, Options{Mode: mode, Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

var (
	today     = Date{31, 12, 2026}
	tomorrow  = Date{1, 1, 2027}
	yesterday = Date{30, 12, 2026}
)

func TestClientGetCalls(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Get", mock.Anything, mock.Anything).Return(&httpclient.Response{Code: 404}, nil).Times(6)
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	_, _ = c.GetTodayMenu(ctx)
	_, _ = c.GetTomorrowMenu(ctx)
	_, _ = c.GetYesterdayMenu(ctx)
	_, _ = c.GetEntries(ctx, Date{})
	_, _ = c.GetMainCourses(ctx, Date{})
	_, _ = c.GetSideDishes(ctx, Date{})

	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, "Get", 6)
}

func TestClientMenuPaths(t *testing.T) {
	tr := &mockTransport{}
	tr.notFound("menu/date/31-12-2026")
	tr.notFound("menu/date/1-1-2027")
	tr.notFound("menu/date/30-12-2026")
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	_, _ = c.GetMenu(ctx, Date{})
	_, _ = c.GetTomorrowMenu(ctx)
	_, _ = c.GetYesterdayMenu(ctx)

	tr.AssertExpectations(t)
}

func TestClientDishesByCategoryPaths(t *testing.T) {
	tr := &mockTransport{}
	tr.notFound("menu/date/" + today.String() + "/dishes/entries")
	tr.notFound("menu/date/" + today.String() + "/dishes/maincourses")
	tr.notFound("menu/date/" + tomorrow.String() + "/dishes/maincourses")
	tr.notFound("menu/date/" + today.String() + "/dishes/sidedishes")
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	_, _ = c.GetEntries(ctx, Date{})
	_, _ = c.GetMainCourses(ctx, today)
	_, _ = c.GetMainCourses(ctx, tomorrow)
	_, _ = c.GetSideDishes(ctx, Date{})

	tr.AssertExpectations(t)
}

func TestClientRejectsImpossibleDates(t *testing.T) {
	tr := &mockTransport{}
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	if _, err := c.GetMenu(ctx, Date{31, 2, 2026}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("GetMenu(31-2-2026) error = %v, want ErrInvalidDate", err)
	}
	if _, err := c.GetOrders(ctx, Date{0, 13, 2026}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("GetOrders(0-13-2026) error = %v, want ErrInvalidDate", err)
	}
	if _, err := c.GetSideDishes(ctx, Date{29, 2, 2027}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("GetSideDishes(29-2-2027) error = %v, want ErrInvalidDate", err)
	}
	tr.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestClientSingleResourcePaths(t *testing.T) {
	dish := DishDTO{Name: "bread", Category: Entry, Description: "A big bread", ID: "xyzBread", PictureURL: "local/bread.png"}

	tr := &mockTransport{}
	tr.notFound("dishes/id/" + dish.ID)
	tr.notFound("dishes/id/" + dish.ID + "/alergenics")
	tr.notFound("order/date/" + yesterday.String())
	tr.notFound("order/id/o-17")
	tr.notFound("order/date/" + today.String() + "/status/PENDING")
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	_, _ = c.GetDish(ctx, dish.ID)
	_, _ = c.GetAllergens(ctx, dish.ID)
	_, _ = c.GetOrders(ctx, yesterday)
	_, _ = c.GetOrder(ctx, "o-17")
	_, _ = c.GetPendingOrders(ctx)

	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, "Get", 5)
}

func TestClientEscapesIdentifiers(t *testing.T) {
	tr := &mockTransport{}
	tr.notFound("dishes/id/a%2Fb")
	c := newTestClient(t, tr, ModeDecode)

	_, _ = c.GetDish(context.Background(), "a/b")
	tr.AssertExpectations(t)
}

func TestClientErrorCodesDegradeToEmpty(t *testing.T) {
	tr := &mockTransport{}
	tr.activateError(404)
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	menu, err := c.GetMenu(ctx, Date{})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	entries, err := c.GetEntries(ctx, Date{})
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	sides, err := c.GetSideDishes(ctx, Date{})
	if err != nil {
		t.Fatalf("GetSideDishes: %v", err)
	}

	if len(menu.Dishes) != 0 || !menu.Date.IsZero() {
		t.Fatalf("expected empty menu, got %+v", menu)
	}
	if len(entries) != 0 || len(sides) != 0 {
		t.Fatalf("expected no dishes, got %d entries and %d sides", len(entries), len(sides))
	}
	tr.AssertNumberOfCalls(t, "Get", 3)
}

func TestClientNon200WithoutErrorDegradesToEmpty(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Get", mock.Anything, mock.Anything).Return(&httpclient.Response{Code: 500, Body: menuBody(today)}, nil)
	c := newTestClient(t, tr, ModeDecode)

	menu, err := c.GetMenu(context.Background(), Date{})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if len(menu.Dishes) != 0 {
		t.Fatalf("expected no dishes on 500, got %d", len(menu.Dishes))
	}
}

func TestClientReturnedMenu(t *testing.T) {
	tr := &mockTransport{}
	tr.returnDefaultMenu(today)
	c := newTestClient(t, tr, ModeDecode)

	menu, err := c.GetMenu(context.Background(), Date{})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if len(menu.Dishes) != 7 {
		t.Fatalf("expected 7 dishes, got %d", len(menu.Dishes))
	}
	if menu.Date != today {
		t.Fatalf("returned date %s differs from %s", menu.Date, today)
	}
	if menu.Dishes[0].Name != "Carbonara" || menu.Dishes[6].Category != Side {
		t.Fatalf("unexpected dishes: first %+v last %+v", menu.Dishes[0], menu.Dishes[6])
	}
	tr.AssertNumberOfCalls(t, "Get", 1)
}

func TestClientMenuDecodeErrorCarriesPath(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Get", "menu/date/31-12-2026", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: `"date": "31-12-2026"menu: [{"id": "x", "name": "y", "category": "Dolce"}]`}, nil)
	c := newTestClient(t, tr, ModeDecode)

	_, err := c.GetMenu(context.Background(), Date{})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if de.Path != "menu/date/31-12-2026" {
		t.Fatalf("decode error path = %q", de.Path)
	}
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestClientDecodeModeCompletesReads(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Get", "menu/date/31-12-2026/dishes/maincourses", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: "[" + dishFragment("id3", "Bisteca", "Secondo", "s1.png") + "]"}, nil)
	tr.On("Get", "dishes/id/id3", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: dishFragment("id3", "Bisteca", "Secondo", "s1.png")}, nil)
	tr.On("Get", "dishes/id/id3/alergenics", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: "[sulphites]"}, nil)
	tr.On("Get", "order/id/o1", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: `{"id": "o1", "status": "CANCELED", "consumerId": "c1", "dishIds": [id3]}`}, nil)
	tr.On("Get", "order/date/31-12-2026/status/PENDING", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: `[{"id": "o2", "status": "PENDING", "consumerId": "c1", "dishIds": [id1,id5]}]`}, nil)
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	mains, err := c.GetMainCourses(ctx, Date{})
	if err != nil {
		t.Fatalf("GetMainCourses: %v", err)
	}
	if len(mains) != 1 || mains[0].Category != Main {
		t.Fatalf("unexpected main courses: %+v", mains)
	}

	dish, err := c.GetDish(ctx, "id3")
	if err != nil {
		t.Fatalf("GetDish: %v", err)
	}
	if dish.Name != "Bisteca" {
		t.Fatalf("dish name = %q", dish.Name)
	}

	allergens, err := c.GetAllergens(ctx, "id3")
	if err != nil {
		t.Fatalf("GetAllergens: %v", err)
	}
	if !reflect.DeepEqual(allergens, []string{"sulphites"}) {
		t.Fatalf("allergens = %v", allergens)
	}

	order, err := c.GetOrder(ctx, "o1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.Status != StatusCanceled || !reflect.DeepEqual(order.DishIDs, []string{"id3"}) {
		t.Fatalf("unexpected order: %+v", order)
	}

	pending, err := c.GetPendingOrders(ctx)
	if err != nil {
		t.Fatalf("GetPendingOrders: %v", err)
	}
	if len(pending) != 1 || !reflect.DeepEqual(pending[0].DishIDs, []string{"id1", "id5"}) {
		t.Fatalf("unexpected pending orders: %+v", pending)
	}

	tr.AssertExpectations(t)
}

func TestClientStubModeDiscardsBodies(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Get", mock.MatchedBy(func(p string) bool { return strings.HasPrefix(p, "menu/date/31-12-2026/") }), mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: "[" + dishFragment("id1", "Carbonara", "Primo", "") + "]"}, nil)
	tr.On("Get", "dishes/id/id1", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: dishFragment("id1", "Carbonara", "Primo", "")}, nil)
	tr.On("Get", "menu/date/31-12-2026", mock.Anything).
		Return(&httpclient.Response{Code: 200, Body: menuBody(today)}, nil)
	c := newTestClient(t, tr, ModeStub)
	ctx := context.Background()

	entries, err := c.GetEntries(ctx, Date{})
	if err != nil || entries != nil {
		t.Fatalf("stub GetEntries = %v, %v; want nil, nil", entries, err)
	}

	dish, err := c.GetDish(ctx, "id1")
	if err != nil || !dish.IsZero() {
		t.Fatalf("stub GetDish = %+v, %v; want zero dish", dish, err)
	}

	menu, err := c.GetMenu(ctx, Date{})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if len(menu.Dishes) != 7 {
		t.Fatalf("menus are decoded in every mode, got %d dishes", len(menu.Dishes))
	}
	tr.AssertNumberOfCalls(t, "Get", 3)
}

func TestClientOrderDishes(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Post", "order/consumer/id/c1/dishes", mock.Anything, "[d1,d2,d3]").
		Return(&httpclient.Response{Code: 201}, nil).Once()
	c := newTestClient(t, tr, ModeDecode)

	if err := c.OrderDishes(context.Background(), "c1", []string{"d1", "d2", "d3"}); err != nil {
		t.Fatalf("OrderDishes: %v", err)
	}
	tr.AssertExpectations(t)
}

func TestClientOrderDishesRejectsBadInput(t *testing.T) {
	tr := &mockTransport{}
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	cases := []struct {
		consumer string
		ids      []string
		want     error
	}{
		{"c1", nil, ErrNoDishes},
		{"c1", []string{}, ErrNoDishes},
		{" ", []string{"d1"}, ErrMissingID},
		{"c1", []string{"d1,d2", "d3"}, ErrInvalidID},
		{"c1", []string{"d3]"}, ErrInvalidID},
	}
	for _, tc := range cases {
		if err := c.OrderDishes(ctx, tc.consumer, tc.ids); !errors.Is(err, tc.want) {
			t.Fatalf("OrderDishes(%q, %q) error = %v, want %v", tc.consumer, tc.ids, err, tc.want)
		}
	}
	tr.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
}

func TestClientOrderDishesSwallowsTransportFailure(t *testing.T) {
	tr := &mockTransport{}
	tr.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()
	c := newTestClient(t, tr, ModeDecode)

	if err := c.OrderDishes(context.Background(), "c1", []string{"d1"}); err != nil {
		t.Fatalf("transport failure should degrade to nil, got %v", err)
	}
	tr.AssertExpectations(t)
}

func TestClientRejectsEmptyIdentifiers(t *testing.T) {
	tr := &mockTransport{}
	c := newTestClient(t, tr, ModeDecode)
	ctx := context.Background()

	if _, err := c.GetDish(ctx, ""); !errors.Is(err, ErrMissingID) {
		t.Fatalf("GetDish(\"\") error = %v", err)
	}
	if _, err := c.GetAllergens(ctx, " "); !errors.Is(err, ErrMissingID) {
		t.Fatalf("GetAllergens(\" \") error = %v", err)
	}
	if _, err := c.GetOrder(ctx, ""); !errors.Is(err, ErrMissingID) {
		t.Fatalf("GetOrder(\"\") error = %v", err)
	}
	tr.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(nil, Options{}); err == nil {
		t.Fatal("expected error for nil transport")
	}
	if _, err := NewClient(&mockTransport{}, Options{Mode: "lazy"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	c, err := NewClient(&mockTransport{}, Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Mode() != ModeDecode {
		t.Fatalf("default mode = %q, want %q", c.Mode(), ModeDecode)
	}
}

func TestParseResponseMode(t *testing.T) {
	m, err := ParseResponseMode(" STUB ")
	if err != nil || m != ModeStub {
		t.Fatalf("ParseResponseMode(\" STUB \") = %q, %v", m, err)
	}
	m, err = ParseResponseMode("")
	if err != nil || m != ModeDecode {
		t.Fatalf("ParseResponseMode(\"\") = %q, %v", m, err)
	}
}
