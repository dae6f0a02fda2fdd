// Package store provides an in-memory canteen.TxStore used by tests and
// the dev server. Transactions are simulated with a global lock plus a
// snapshot that is restored when the closure fails, which gives the same
// observable semantics as the durable stores: all-or-nothing, no
// interleaving.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/canteen-engine/canteen"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	users          map[string]canteen.User
	products       map[string]canteen.Product
	orders         map[string]canteen.Order
	coupons        map[string]canteen.Coupon
	notifications  map[string]canteen.Notification
	adjustments    []canteen.Adjustment
	refundRequests map[string]canteen.RefundRequest
}

func NewMemory() *Memory {
	return &Memory{
		users:          make(map[string]canteen.User),
		products:       make(map[string]canteen.Product),
		orders:         make(map[string]canteen.Order),
		coupons:        make(map[string]canteen.Coupon),
		notifications:  make(map[string]canteen.Notification),
		refundRequests: make(map[string]canteen.RefundRequest),
	}
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) GetUser(_ context.Context, email string) (*canteen.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getUserLocked(email)
}

func (m *Memory) getUserLocked(email string) (*canteen.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) SaveUser(_ context.Context, u canteen.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, email)
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]canteen.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]canteen.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (m *Memory) ListUsersByRole(ctx context.Context, role canteen.Role) ([]canteen.User, error) {
	all, err := m.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var users []canteen.User
	for _, u := range all {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Memory) GetProduct(_ context.Context, id string) (*canteen.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getProductLocked(id)
}

func (m *Memory) getProductLocked(id string) (*canteen.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) SaveProduct(_ context.Context, p canteen.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *Memory) ListProducts(_ context.Context) ([]canteen.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := make([]canteen.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// =============================================================================
// ORDERS
// =============================================================================

func (m *Memory) GetOrder(_ context.Context, id string) (*canteen.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getOrderLocked(id)
}

func (m *Memory) getOrderLocked(id string) (*canteen.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	o.Items = append([]canteen.OrderItem(nil), o.Items...)
	return &o, nil
}

func (m *Memory) SaveOrder(_ context.Context, o canteen.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.Items = append([]canteen.OrderItem(nil), o.Items...)
	m.orders[o.ID] = o
	return nil
}

func (m *Memory) ListOrdersByUser(_ context.Context, email string) ([]canteen.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []canteen.Order
	for _, o := range m.orders {
		if o.UserEmail == email {
			orders = append(orders, o)
		}
	}
	sortOrdersDesc(orders)
	return orders, nil
}

func (m *Memory) ListOrders(_ context.Context, filter canteen.OrderFilter) ([]canteen.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []canteen.Order
	for _, o := range m.orders {
		if matchOrder(o, filter) {
			orders = append(orders, o)
		}
	}
	sortOrdersDesc(orders)
	return orders, nil
}

// matchOrder applies an OrderFilter; the Day window is the whole UTC day.
func matchOrder(o canteen.Order, filter canteen.OrderFilter) bool {
	if filter.Status != "" && o.Status != filter.Status {
		return false
	}
	if !filter.Day.IsZero() {
		day := filter.Day.UTC()
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, 1)
		at := o.CreatedAt.UTC()
		if at.Before(start) || !at.Before(end) {
			return false
		}
	}
	return true
}

func sortOrdersDesc(orders []canteen.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// =============================================================================
// COUPONS
// =============================================================================

func (m *Memory) GetCoupon(_ context.Context, code string) (*canteen.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCouponLocked(code)
}

func (m *Memory) getCouponLocked(code string) (*canteen.Coupon, error) {
	c, ok := m.coupons[code]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) SaveCoupon(_ context.Context, c canteen.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[c.Code] = c
	return nil
}

func (m *Memory) ListCoupons(_ context.Context) ([]canteen.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coupons := make([]canteen.Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool {
		return coupons[i].CreatedAt.After(coupons[j].CreatedAt)
	})
	return coupons, nil
}

func (m *Memory) ListRedeemedCoupons(_ context.Context, email string) ([]canteen.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var coupons []canteen.Coupon
	for _, c := range m.coupons {
		if c.Used && c.UsedBy == email {
			coupons = append(coupons, c)
		}
	}
	sort.Slice(coupons, func(i, j int) bool {
		return coupons[i].UsedAt.After(coupons[j].UsedAt)
	})
	return coupons, nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (m *Memory) SaveNotification(_ context.Context, n canteen.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = n
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, email string, limit int) ([]canteen.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var notifications []canteen.Notification
	for _, n := range m.notifications {
		if n.UserEmail == email {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].Timestamp.After(notifications[j].Timestamp)
	})
	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

func (m *Memory) SaveAdjustment(_ context.Context, a canteen.Adjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments = append(m.adjustments, a)
	return nil
}

func (m *Memory) ListAdjustments(_ context.Context, email string) ([]canteen.Adjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var adjustments []canteen.Adjustment
	for _, a := range m.adjustments {
		if a.UserEmail == email {
			adjustments = append(adjustments, a)
		}
	}
	sort.Slice(adjustments, func(i, j int) bool {
		return adjustments[i].Timestamp.After(adjustments[j].Timestamp)
	})
	return adjustments, nil
}

// =============================================================================
// REFUND REQUESTS
// =============================================================================

func (m *Memory) GetRefundRequest(_ context.Context, id string) (*canteen.RefundRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.refundRequests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) SaveRefundRequest(_ context.Context, r canteen.RefundRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refundRequests[r.ID] = r
	return nil
}

func (m *Memory) ListRefundRequests(_ context.Context) ([]canteen.RefundRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	requests := make([]canteen.RefundRequest, 0, len(m.refundRequests))
	for _, r := range m.refundRequests {
		requests = append(requests, r)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

// =============================================================================
// TRANSACTIONS - snapshot + rollback under one lock
// =============================================================================

// WithTx executes fn while holding the store lock. A snapshot of all
// collections is taken first; if fn fails, the snapshot is restored, so a
// failed transaction is "not applied" rather than partially visible.
func (m *Memory) WithTx(_ context.Context, fn func(canteen.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	view := &txView{parent: m}
	if err := fn(view); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	users          map[string]canteen.User
	products       map[string]canteen.Product
	orders         map[string]canteen.Order
	coupons        map[string]canteen.Coupon
	notifications  map[string]canteen.Notification
	adjustments    []canteen.Adjustment
	refundRequests map[string]canteen.RefundRequest
}

func (m *Memory) snapshot() memorySnapshot {
	return memorySnapshot{
		users:          copyMap(m.users),
		products:       copyMap(m.products),
		orders:         copyMap(m.orders),
		coupons:        copyMap(m.coupons),
		notifications:  copyMap(m.notifications),
		adjustments:    append([]canteen.Adjustment(nil), m.adjustments...),
		refundRequests: copyMap(m.refundRequests),
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.users = s.users
	m.products = s.products
	m.orders = s.orders
	m.coupons = s.coupons
	m.notifications = s.notifications
	m.adjustments = s.adjustments
	m.refundRequests = s.refundRequests
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// txView accesses the parent's collections without re-locking; the parent's
// lock is held for the duration of WithTx.
type txView struct {
	parent *Memory
}

func (tv *txView) GetUser(_ context.Context, email string) (*canteen.User, error) {
	return tv.parent.getUserLocked(email)
}

func (tv *txView) SaveUser(_ context.Context, u canteen.User) error {
	tv.parent.users[u.Email] = u
	return nil
}

func (tv *txView) DeleteUser(_ context.Context, email string) error {
	delete(tv.parent.users, email)
	return nil
}

func (tv *txView) ListUsers(_ context.Context) ([]canteen.User, error) {
	users := make([]canteen.User, 0, len(tv.parent.users))
	for _, u := range tv.parent.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (tv *txView) ListUsersByRole(_ context.Context, role canteen.Role) ([]canteen.User, error) {
	var users []canteen.User
	for _, u := range tv.parent.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (tv *txView) GetProduct(_ context.Context, id string) (*canteen.Product, error) {
	return tv.parent.getProductLocked(id)
}

func (tv *txView) SaveProduct(_ context.Context, p canteen.Product) error {
	tv.parent.products[p.ID] = p
	return nil
}

func (tv *txView) DeleteProduct(_ context.Context, id string) error {
	delete(tv.parent.products, id)
	return nil
}

func (tv *txView) ListProducts(_ context.Context) ([]canteen.Product, error) {
	products := make([]canteen.Product, 0, len(tv.parent.products))
	for _, p := range tv.parent.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (tv *txView) GetOrder(_ context.Context, id string) (*canteen.Order, error) {
	return tv.parent.getOrderLocked(id)
}

func (tv *txView) SaveOrder(_ context.Context, o canteen.Order) error {
	o.Items = append([]canteen.OrderItem(nil), o.Items...)
	tv.parent.orders[o.ID] = o
	return nil
}

func (tv *txView) ListOrdersByUser(_ context.Context, email string) ([]canteen.Order, error) {
	var orders []canteen.Order
	for _, o := range tv.parent.orders {
		if o.UserEmail == email {
			orders = append(orders, o)
		}
	}
	sortOrdersDesc(orders)
	return orders, nil
}

func (tv *txView) ListOrders(_ context.Context, filter canteen.OrderFilter) ([]canteen.Order, error) {
	var orders []canteen.Order
	for _, o := range tv.parent.orders {
		if matchOrder(o, filter) {
			orders = append(orders, o)
		}
	}
	sortOrdersDesc(orders)
	return orders, nil
}

func (tv *txView) GetCoupon(_ context.Context, code string) (*canteen.Coupon, error) {
	return tv.parent.getCouponLocked(code)
}

func (tv *txView) SaveCoupon(_ context.Context, c canteen.Coupon) error {
	tv.parent.coupons[c.Code] = c
	return nil
}

func (tv *txView) ListCoupons(_ context.Context) ([]canteen.Coupon, error) {
	coupons := make([]canteen.Coupon, 0, len(tv.parent.coupons))
	for _, c := range tv.parent.coupons {
		coupons = append(coupons, c)
	}
	return coupons, nil
}

func (tv *txView) ListRedeemedCoupons(_ context.Context, email string) ([]canteen.Coupon, error) {
	var coupons []canteen.Coupon
	for _, c := range tv.parent.coupons {
		if c.Used && c.UsedBy == email {
			coupons = append(coupons, c)
		}
	}
	return coupons, nil
}

func (tv *txView) SaveNotification(_ context.Context, n canteen.Notification) error {
	tv.parent.notifications[n.ID] = n
	return nil
}

func (tv *txView) ListNotifications(_ context.Context, email string, limit int) ([]canteen.Notification, error) {
	var notifications []canteen.Notification
	for _, n := range tv.parent.notifications {
		if n.UserEmail == email {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}

func (tv *txView) MarkNotificationRead(_ context.Context, id string) error {
	n, ok := tv.parent.notifications[id]
	if !ok {
		return nil
	}
	n.Read = true
	tv.parent.notifications[id] = n
	return nil
}

func (tv *txView) SaveAdjustment(_ context.Context, a canteen.Adjustment) error {
	tv.parent.adjustments = append(tv.parent.adjustments, a)
	return nil
}

func (tv *txView) ListAdjustments(_ context.Context, email string) ([]canteen.Adjustment, error) {
	var adjustments []canteen.Adjustment
	for _, a := range tv.parent.adjustments {
		if a.UserEmail == email {
			adjustments = append(adjustments, a)
		}
	}
	return adjustments, nil
}

func (tv *txView) GetRefundRequest(_ context.Context, id string) (*canteen.RefundRequest, error) {
	r, ok := tv.parent.refundRequests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (tv *txView) SaveRefundRequest(_ context.Context, r canteen.RefundRequest) error {
	tv.parent.refundRequests[r.ID] = r
	return nil
}

func (tv *txView) ListRefundRequests(_ context.Context) ([]canteen.RefundRequest, error) {
	requests := make([]canteen.RefundRequest, 0, len(tv.parent.refundRequests))
	for _, r := range tv.parent.refundRequests {
		requests = append(requests, r)
	}
	return requests, nil
}
