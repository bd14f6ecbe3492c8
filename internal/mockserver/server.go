package mockserver

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alright-hq/alright-client/internal/logger"
	"github.com/alright-hq/alright-client/pkg/alright"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxOrderBodyBytes = 64 << 10

type storedOrder struct {
	alright.Order
	Date alright.Date
}

// Server is an in-memory canteen that serves the client routes.
type Server struct {
	mu     sync.RWMutex
	dishes []fixtureDish
	orders []storedOrder
	now    func() time.Time
	log    logger.Logger
}

// Options configures a Server.
type Options struct {
	// Now is the clock used to date new orders. Defaults to time.Now.
	Now    func() time.Time
	Logger logger.Logger
}

// New returns a Server loaded with the default seven-dish menu.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	return &Server{
		dishes: defaultDishes(),
		now:    opts.Now,
		log:    opts.Logger,
	}
}

// Handler returns the router, mounted under prefix (for example "/api").
func (s *Server) Handler(prefix string) http.Handler {
	root := mux.NewRouter().UseEncodedPath()
	root.HandleFunc("/health", s.health).Methods(http.MethodGet, http.MethodHead)

	r := root
	if p := "/" + strings.Trim(prefix, "/"); p != "/" {
		r = root.PathPrefix(p).Subrouter()
	}

	r.HandleFunc("/menu/date/{date}", s.menu).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/menu/date/{date}/dishes/{category}", s.categoryDishes).Methods(http.MethodGet)
	r.HandleFunc("/dishes/id/{id}", s.dish).Methods(http.MethodGet)
	r.HandleFunc("/dishes/id/{id}/alergenics", s.allergens).Methods(http.MethodGet)
	r.HandleFunc("/order/consumer/id/{id}/dishes", s.createOrder).Methods(http.MethodPost)
	r.HandleFunc("/order/date/{date}", s.ordersByDate).Methods(http.MethodGet)
	r.HandleFunc("/order/date/{date}/status/{status}", s.ordersByStatus).Methods(http.MethodGet)
	r.HandleFunc("/order/id/{id}", s.order).Methods(http.MethodGet)
	r.HandleFunc("/order/id/{id}", s.cancelOrder).Methods(http.MethodDelete)
	return root
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) menu(w http.ResponseWriter, r *http.Request) {
	date, ok := dateVar(w, r)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, encodeMenu(date, s.menuDishes(nil)))
}

func (s *Server) categoryDishes(w http.ResponseWriter, r *http.Request) {
	if _, ok := dateVar(w, r); !ok {
		return
	}
	cat, err := alright.ParseCategorySegment(pathVar(r, "category"))
	if err != nil {
		writeText(w, http.StatusNotFound, "unknown category")
		return
	}
	writeText(w, http.StatusOK, encodeDishes(s.menuDishes(&cat)))
}

func (s *Server) dish(w http.ResponseWriter, r *http.Request) {
	d, ok := s.findDish(pathVar(r, "id"))
	if !ok {
		writeText(w, http.StatusNotFound, "dish not found")
		return
	}
	writeText(w, http.StatusOK, encodeDish(d.DishDTO))
}

func (s *Server) allergens(w http.ResponseWriter, r *http.Request) {
	d, ok := s.findDish(pathVar(r, "id"))
	if !ok {
		writeText(w, http.StatusNotFound, "dish not found")
		return
	}
	writeText(w, http.StatusOK, encodeList(d.Allergens))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	consumer := pathVar(r, "id")
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxOrderBodyBytes))
	if err != nil {
		writeText(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ids := parseIDList(string(raw))
	if len(ids) == 0 {
		writeText(w, http.StatusBadRequest, "no dishes")
		return
	}
	for _, id := range ids {
		if _, ok := s.findDish(id); !ok {
			writeText(w, http.StatusBadRequest, "unknown dish "+id)
			return
		}
	}

	order := alright.Order{
		ID:         uuid.NewString(),
		Status:     alright.StatusPending,
		ConsumerID: consumer,
		DishIDs:    ids,
	}
	s.mu.Lock()
	s.orders = append(s.orders, storedOrder{Order: order, Date: alright.DateOf(s.now())})
	s.mu.Unlock()

	s.log.InfoObj("order created", "mock_order", map[string]any{
		"order_id":    order.ID,
		"consumer_id": consumer,
		"dishes":      len(ids),
	})
	writeText(w, http.StatusCreated, encodeOrder(order))
}

func (s *Server) ordersByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := dateVar(w, r)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, encodeOrders(s.filterOrders(date, "")))
}

func (s *Server) ordersByStatus(w http.ResponseWriter, r *http.Request) {
	date, ok := dateVar(w, r)
	if !ok {
		return
	}
	status, err := alright.ParseOrderStatus(pathVar(r, "status"))
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, encodeOrders(s.filterOrders(date, status)))
}

func (s *Server) order(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			writeText(w, http.StatusOK, encodeOrder(o.Order))
			return
		}
	}
	writeText(w, http.StatusNotFound, "order not found")
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id := pathVar(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if s.orders[i].Status != alright.StatusPending {
			writeText(w, http.StatusConflict, "order is "+string(s.orders[i].Status))
			return
		}
		s.orders[i].Status = alright.StatusCanceled
		writeText(w, http.StatusOK, encodeOrder(s.orders[i].Order))
		return
	}
	writeText(w, http.StatusNotFound, "order not found")
}

func (s *Server) menuDishes(cat *alright.DishCategory) []alright.DishDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]alright.DishDTO, 0, len(s.dishes))
	for _, d := range s.dishes {
		if cat == nil || d.Category == *cat {
			out = append(out, d.DishDTO)
		}
	}
	return out
}

func (s *Server) findDish(id string) (fixtureDish, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.dishes {
		if d.ID == id {
			return d, true
		}
	}
	return fixtureDish{}, false
}

func (s *Server) filterOrders(date alright.Date, status alright.OrderStatus) []alright.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []alright.Order
	for _, o := range s.orders {
		if o.Date != date || (status != "" && o.Status != status) {
			continue
		}
		out = append(out, o.Order)
	}
	return out
}

func parseIDList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.Trim(strings.TrimSpace(id), `"`); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// pathVar returns the unescaped route variable.
func pathVar(r *http.Request, name string) string {
	raw := mux.Vars(r)[name]
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func dateVar(w http.ResponseWriter, r *http.Request) (alright.Date, bool) {
	date, err := alright.ParseDate(pathVar(r, "date"))
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return alright.Date{}, false
	}
	return date, true
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
