// Package orderstest provides an in-memory orders.Store for tests.
package orderstest

import (
	"context"
	"sort"
	"sync"

	"github.com/01moynul/yourqueen-golang/internal/models"
	"github.com/01moynul/yourqueen-golang/internal/orders"
)

// Store is an in-memory orders.Store. A transaction works on a copy of the
// state that replaces the live state only when the callback succeeds.
type Store struct {
	mu    sync.Mutex
	state state

	// DuplicateInserts makes the next N InsertOrder calls fail with
	// orders.ErrDuplicateOrderNumber.
	DuplicateInserts int
	// TriedNumbers records every order number passed to InsertOrder.
	TriedNumbers []string
}

type state struct {
	products map[int64]models.Product
	cart     []models.CartItem
	users    map[int64]int64 // user id -> loyalty points
	orders   map[int64]models.Order
	nextID   int64
}

func New() *Store {
	return &Store{state: state{
		products: map[int64]models.Product{},
		users:    map[int64]int64{},
		orders:   map[int64]models.Order{},
	}}
}

func (s state) clone() state {
	c := state{
		products: make(map[int64]models.Product, len(s.products)),
		cart:     append([]models.CartItem(nil), s.cart...),
		users:    make(map[int64]int64, len(s.users)),
		orders:   make(map[int64]models.Order, len(s.orders)),
		nextID:   s.nextID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// --- Seeding & inspection helpers ---

func (s *Store) AddProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

func (s *Store) Product(id int64) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[id]
}

func (s *Store) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.products, id)
}

func (s *Store) AddCartLine(userID, productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextID++
	s.state.cart = append(s.state.cart, models.CartItem{ID: s.state.nextID, UserID: userID, ProductID: productID, Quantity: qty})
}

func (s *Store) CartLines(userID int64) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CartItem
	for _, ci := range s.state.cart {
		if ci.UserID == userID {
			out = append(out, ci)
		}
	}
	return out
}

func (s *Store) AddUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[userID] = 0
}

func (s *Store) LoyaltyPoints(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.users[userID]
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

// PutOrder stores an order as-is, assigning an id when it has none.
func (s *Store) PutOrder(o models.Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		s.state.nextID++
		o.ID = s.state.nextID
	}
	s.state.orders[o.ID] = o
	return o.ID
}

// --- orders.Store ---

func (s *Store) InTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{store: s, st: &work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[orderID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return &o, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.state.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) ListOrders(ctx context.Context, f orders.OrderFilter) ([]models.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Order
	for _, o := range s.state.orders {
		if f.Status == "" || o.OrderStatus == f.Status {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (f.Page - 1) * f.Limit
	if start >= len(all) {
		return []models.Order{}, len(all), nil
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (s *Store) CancelPendingOrder(ctx context.Context, userID, orderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[orderID]
	if !ok || o.UserID != userID || o.OrderStatus != models.OrderStatusPending {
		return false, nil
	}
	o.OrderStatus = models.OrderStatusCancelled
	s.state.orders[orderID] = o
	return true, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, orderStatus, paymentStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[orderID]
	if !ok {
		return orders.ErrOrderNotFound
	}
	if orderStatus != "" {
		o.OrderStatus = orderStatus
	}
	if paymentStatus != "" {
		o.PaymentStatus = paymentStatus
	}
	s.state.orders[orderID] = o
	return nil
}

func (s *Store) SetPaymentMethod(ctx context.Context, orderID int64, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[orderID]
	if !ok {
		return orders.ErrOrderNotFound
	}
	o.PaymentMethod = method
	o.PaymentStatus = models.PaymentStatusPending
	s.state.orders[orderID] = o
	return nil
}

func (s *Store) CompletePendingPayment(ctx context.Context, userID, orderID int64, method string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[orderID]
	if !ok || o.UserID != userID || o.OrderStatus != models.OrderStatusPending ||
		o.PaymentStatus == models.PaymentStatusCompleted || o.PaymentMethod != method {
		return false, nil
	}
	o.PaymentStatus = models.PaymentStatusCompleted
	o.OrderStatus = models.OrderStatusProcessing
	s.state.orders[orderID] = o
	return true, nil
}

// --- orders.Tx ---

type tx struct {
	store *Store
	st    *state
}

func (t *tx) CartSnapshot(ctx context.Context, userID int64) ([]orders.SnapshotLine, error) {
	var lines []orders.SnapshotLine
	for _, ci := range t.st.cart {
		if ci.UserID != userID {
			continue
		}
		line := orders.SnapshotLine{CartItemID: ci.ID, ProductID: ci.ProductID, Quantity: ci.Quantity}
		if p, ok := t.st.products[ci.ProductID]; ok {
			p := p
			line.Product = &p
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].CartItemID < lines[j].CartItemID })
	return lines, nil
}

func (t *tx) InsertOrder(ctx context.Context, order *models.Order) error {
	t.store.TriedNumbers = append(t.store.TriedNumbers, order.OrderNumber)
	if t.store.DuplicateInserts > 0 {
		t.store.DuplicateInserts--
		return orders.ErrDuplicateOrderNumber
	}
	for _, o := range t.st.orders {
		if o.OrderNumber == order.OrderNumber {
			return orders.ErrDuplicateOrderNumber
		}
	}

	t.st.nextID++
	order.ID = t.st.nextID
	for i := range order.Items {
		t.st.nextID++
		order.Items[i].ID = t.st.nextID
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	t.st.orders[order.ID] = stored
	return nil
}

func (t *tx) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	p, ok := t.st.products[productID]
	if !ok || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	p.SalesCount += qty
	t.st.products[productID] = p
	return true, nil
}

func (t *tx) ClearCart(ctx context.Context, userID int64) (int64, error) {
	kept := t.st.cart[:0:0]
	var removed int64
	for _, ci := range t.st.cart {
		if ci.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, ci)
	}
	t.st.cart = kept
	return removed, nil
}

func (t *tx) AddLoyaltyPoints(ctx context.Context, userID int64, points int64) error {
	t.st.users[userID] += points
	return nil
}
