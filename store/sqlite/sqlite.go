/*
Package sqlite provides a SQLite-backed canteen.TxStore.

PURPOSE:
  Single-node durable storage for the canteen collections. Each collection
  is one table; nested order data (items, timing slot) is stored as JSON,
  matching the shape of the documents themselves.

TRANSACTIONS:
  WithTx maps onto a database transaction opened with an immediate write
  lock (_txlock=immediate), so a read-check-write closure holds the writer
  lock for its whole duration and two concurrent closures serialize instead
  of both passing a stale balance check. If the closure errors, the
  transaction is rolled back and nothing is applied.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging): readers don't
  block the single writer and crash recovery is cleaner.

MONEY & TIME:
  Currency amounts are stored as decimal strings, never floats.
  Timestamps are RFC3339 UTC text; zero times are stored as ''.

USAGE:
  store, err := sqlite.New("./data/canteen.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - canteen/store.go: interface definitions
  - canteen/store/memory.go: in-memory implementation for testing
  - store/mongo: hosted document database implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/canteen-engine/canteen"
)

// Store implements canteen.TxStore using SQLite.
type Store struct {
	db *sql.DB
	queries
}

// New opens (and auto-migrates) a SQLite store. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, queries: queries{db: db}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		balance TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		reset_token TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		category TEXT,
		availability TEXT NOT NULL,
		image_url TEXT
	);

	-- Orders are never deleted; cancellation only flips status and stamps
	-- the refund fields.
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		items_json TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		delivery_charge TEXT NOT NULL,
		total TEXT NOT NULL,
		status TEXT NOT NULL,
		status_reason TEXT,
		delivery_option TEXT NOT NULL,
		classroom TEXT,
		scheduled_time TEXT,
		meal_timing TEXT,
		timing_json TEXT,
		refund_amount TEXT,
		cancelled_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_email, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);

	CREATE TABLE IF NOT EXISTS coupons (
		code TEXT PRIMARY KEY,
		amount TEXT NOT NULL,
		expiry TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		used_by TEXT,
		used_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_coupons_used_by ON coupons(used_by, used_at DESC);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		order_id TEXT,
		read INTEGER NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_email, timestamp DESC);

	-- Admin balance adjustments (append-only).
	CREATE TABLE IF NOT EXISTS adjustments (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		amount TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_adjustments_user ON adjustments(user_email, timestamp DESC);

	CREATE TABLE IF NOT EXISTS refund_requests (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		order_id TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx runs fn inside a single database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(canteen.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&queries{db: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// QUERIES - shared between the store and its transactional view
// =============================================================================

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db executor
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseMoney(s string) canteen.Money {
	if s == "" {
		return canteen.ZeroMoney()
	}
	return canteen.MustParseMoney(s)
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

const userColumns = `email, password_hash, name, role, balance, active,
	COALESCE(reset_token,''), created_at, COALESCE(updated_at,'')`

func scanUser(row interface{ Scan(...any) error }) (*canteen.User, error) {
	var u canteen.User
	var role, balance, createdAt, updatedAt string
	var active int
	err := row.Scan(&u.Email, &u.PasswordHash, &u.Name, &role, &balance, &active,
		&u.ResetToken, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = canteen.Role(role)
	u.Balance = parseMoney(balance)
	u.Active = active != 0
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

func (q *queries) GetUser(ctx context.Context, email string) (*canteen.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (q *queries) SaveUser(ctx context.Context, u canteen.User) error {
	active := 0
	if u.Active {
		active = 1
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, role, balance, active, reset_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			password_hash = excluded.password_hash,
			name = excluded.name,
			role = excluded.role,
			balance = excluded.balance,
			active = excluded.active,
			reset_token = excluded.reset_token,
			updated_at = excluded.updated_at`,
		u.Email, u.PasswordHash, u.Name, string(u.Role), u.Balance.String(), active,
		u.ResetToken, fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
	return err
}

func (q *queries) DeleteUser(ctx context.Context, email string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	return err
}

func (q *queries) ListUsers(ctx context.Context) ([]canteen.User, error) {
	return q.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

func (q *queries) ListUsersByRole(ctx context.Context, role canteen.Role) ([]canteen.User, error) {
	return q.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at DESC`, string(role))
}

func (q *queries) queryUsers(ctx context.Context, query string, args ...any) ([]canteen.User, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []canteen.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// -----------------------------------------------------------------------------
// Products
// -----------------------------------------------------------------------------

const productColumns = `id, name, price, COALESCE(category,''), availability, COALESCE(image_url,'')`

func scanProduct(row interface{ Scan(...any) error }) (*canteen.Product, error) {
	var p canteen.Product
	var price string
	err := row.Scan(&p.ID, &p.Name, &price, &p.Category, &p.Availability, &p.ImageURL)
	if err != nil {
		return nil, err
	}
	p.Price = parseMoney(price)
	return &p, nil
}

func (q *queries) GetProduct(ctx context.Context, id string) (*canteen.Product, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (q *queries) SaveProduct(ctx context.Context, p canteen.Product) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, category, availability, image_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			category = excluded.category,
			availability = excluded.availability,
			image_url = excluded.image_url`,
		p.ID, p.Name, p.Price.String(), p.Category, p.Availability, p.ImageURL)
	return err
}

func (q *queries) DeleteProduct(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

func (q *queries) ListProducts(ctx context.Context) ([]canteen.Product, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []canteen.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

const orderColumns = `id, user_email, items_json, subtotal, delivery_charge, total, status,
	COALESCE(status_reason,''), delivery_option, COALESCE(classroom,''), COALESCE(scheduled_time,''),
	COALESCE(meal_timing,''), COALESCE(timing_json,''), COALESCE(refund_amount,''),
	COALESCE(cancelled_at,''), created_at, COALESCE(updated_at,'')`

type orderItemRow struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category"`
	ImageURL  string `json:"image_url"`
}

func encodeItems(items []canteen.OrderItem) (string, error) {
	out := make([]orderItemRow, len(items))
	for i, it := range items {
		out[i] = orderItemRow{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.String(),
			Quantity:  it.Quantity,
			Category:  it.Category,
			ImageURL:  it.ImageURL,
		}
	}
	b, err := json.Marshal(out)
	return string(b), err
}

func decodeItems(raw string) ([]canteen.OrderItem, error) {
	var in []orderItemRow
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}
	items := make([]canteen.OrderItem, len(in))
	for i, it := range in {
		items[i] = canteen.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     parseMoney(it.Price),
			Quantity:  it.Quantity,
			Category:  it.Category,
			ImageURL:  it.ImageURL,
		}
	}
	return items, nil
}

func scanOrder(row interface{ Scan(...any) error }) (*canteen.Order, error) {
	var o canteen.Order
	var items, subtotal, charge, total, status, timing, refund, cancelledAt, createdAt, updatedAt string
	err := row.Scan(&o.ID, &o.UserEmail, &items, &subtotal, &charge, &total, &status,
		&o.StatusReason, &o.DeliveryOption, &o.Classroom, &o.ScheduledTime,
		&o.MealTiming, &timing, &refund, &cancelledAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.Items, err = decodeItems(items)
	if err != nil {
		return nil, fmt.Errorf("order %s items: %w", o.ID, err)
	}
	o.Subtotal = parseMoney(subtotal)
	o.DeliveryCharge = parseMoney(charge)
	o.Total = parseMoney(total)
	o.Status = canteen.Status(status)
	if timing != "" {
		if err := json.Unmarshal([]byte(timing), &o.TimingSlot); err != nil {
			return nil, fmt.Errorf("order %s timing: %w", o.ID, err)
		}
	}
	o.RefundAmount = parseMoney(refund)
	o.CancelledAt = parseTime(cancelledAt)
	o.CreatedAt = parseTime(createdAt)
	o.UpdatedAt = parseTime(updatedAt)
	return &o, nil
}

func (q *queries) GetOrder(ctx context.Context, id string) (*canteen.Order, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (q *queries) SaveOrder(ctx context.Context, o canteen.Order) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	timing, err := json.Marshal(o.TimingSlot)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_email, items_json, subtotal, delivery_charge, total, status,
			status_reason, delivery_option, classroom, scheduled_time, meal_timing, timing_json,
			refund_amount, cancelled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			status_reason = excluded.status_reason,
			refund_amount = excluded.refund_amount,
			cancelled_at = excluded.cancelled_at,
			updated_at = excluded.updated_at`,
		o.ID, o.UserEmail, items, o.Subtotal.String(), o.DeliveryCharge.String(), o.Total.String(),
		string(o.Status), o.StatusReason, o.DeliveryOption, o.Classroom, o.ScheduledTime,
		o.MealTiming, string(timing), o.RefundAmount.String(), fmtTime(o.CancelledAt),
		fmtTime(o.CreatedAt), fmtTime(o.UpdatedAt))
	return err
}

func (q *queries) ListOrdersByUser(ctx context.Context, email string) ([]canteen.Order, error) {
	return q.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_email = ? ORDER BY created_at DESC`, email)
}

func (q *queries) ListOrders(ctx context.Context, filter canteen.OrderFilter) ([]canteen.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.Day.IsZero() {
		day := filter.Day.UTC()
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		query += ` AND created_at >= ? AND created_at < ?`
		args = append(args, fmtTime(start), fmtTime(start.AddDate(0, 0, 1)))
	}
	query += ` ORDER BY created_at DESC`
	return q.queryOrders(ctx, query, args...)
}

func (q *queries) queryOrders(ctx context.Context, query string, args ...any) ([]canteen.Order, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []canteen.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// -----------------------------------------------------------------------------
// Coupons
// -----------------------------------------------------------------------------

const couponColumns = `code, amount, expiry, used, COALESCE(used_by,''), COALESCE(used_at,''), created_at`

func scanCoupon(row interface{ Scan(...any) error }) (*canteen.Coupon, error) {
	var c canteen.Coupon
	var amount, usedAt, createdAt string
	var used int
	err := row.Scan(&c.Code, &amount, &c.Expiry, &used, &c.UsedBy, &usedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	c.Amount = parseMoney(amount)
	c.Used = used != 0
	c.UsedAt = parseTime(usedAt)
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (q *queries) GetCoupon(ctx context.Context, code string) (*canteen.Coupon, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = ?`, code)
	c, err := scanCoupon(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (q *queries) SaveCoupon(ctx context.Context, c canteen.Coupon) error {
	used := 0
	if c.Used {
		used = 1
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO coupons (code, amount, expiry, used, used_by, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			used = excluded.used,
			used_by = excluded.used_by,
			used_at = excluded.used_at`,
		c.Code, c.Amount.String(), c.Expiry, used, c.UsedBy, fmtTime(c.UsedAt), fmtTime(c.CreatedAt))
	return err
}

func (q *queries) ListCoupons(ctx context.Context) ([]canteen.Coupon, error) {
	return q.queryCoupons(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
}

func (q *queries) ListRedeemedCoupons(ctx context.Context, email string) ([]canteen.Coupon, error) {
	return q.queryCoupons(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE used = 1 AND used_by = ? ORDER BY used_at DESC`, email)
}

func (q *queries) queryCoupons(ctx context.Context, query string, args ...any) ([]canteen.Coupon, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var coupons []canteen.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

// -----------------------------------------------------------------------------
// Notifications
// -----------------------------------------------------------------------------

func (q *queries) SaveNotification(ctx context.Context, n canteen.Notification) error {
	read := 0
	if n.Read {
		read = 1
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_email, type, message, order_id, read, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET read = excluded.read`,
		n.ID, n.UserEmail, n.Type, n.Message, n.OrderID, read, fmtTime(n.Timestamp))
	return err
}

func (q *queries) ListNotifications(ctx context.Context, email string, limit int) ([]canteen.Notification, error) {
	if limit <= 0 {
		limit = canteen.NotificationLimit
	}
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_email, type, message, COALESCE(order_id,''), read, timestamp
		FROM notifications WHERE user_email = ? ORDER BY timestamp DESC LIMIT ?`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notifications []canteen.Notification
	for rows.Next() {
		var n canteen.Notification
		var read int
		var timestamp string
		if err := rows.Scan(&n.ID, &n.UserEmail, &n.Type, &n.Message, &n.OrderID, &read, &timestamp); err != nil {
			return nil, err
		}
		n.Read = read != 0
		n.Timestamp = parseTime(timestamp)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (q *queries) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

// -----------------------------------------------------------------------------
// Adjustments
// -----------------------------------------------------------------------------

func (q *queries) SaveAdjustment(ctx context.Context, a canteen.Adjustment) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO adjustments (id, user_email, amount, type, description, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserEmail, a.Amount.String(), a.Type, a.Description, fmtTime(a.Timestamp))
	return err
}

func (q *queries) ListAdjustments(ctx context.Context, email string) ([]canteen.Adjustment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_email, amount, type, COALESCE(description,''), timestamp
		FROM adjustments WHERE user_email = ? ORDER BY timestamp DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var adjustments []canteen.Adjustment
	for rows.Next() {
		var a canteen.Adjustment
		var amount, timestamp string
		if err := rows.Scan(&a.ID, &a.UserEmail, &amount, &a.Type, &a.Description, &timestamp); err != nil {
			return nil, err
		}
		a.Amount = parseMoney(amount)
		a.Timestamp = parseTime(timestamp)
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

// -----------------------------------------------------------------------------
// Refund requests
// -----------------------------------------------------------------------------

func scanRefundRequest(row interface{ Scan(...any) error }) (*canteen.RefundRequest, error) {
	var r canteen.RefundRequest
	var createdAt string
	err := row.Scan(&r.ID, &r.UserEmail, &r.OrderID, &r.Reason, &r.Status, &createdAt)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

func (q *queries) GetRefundRequest(ctx context.Context, id string) (*canteen.RefundRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, user_email, order_id, COALESCE(reason,''), status, created_at
		FROM refund_requests WHERE id = ?`, id)
	r, err := scanRefundRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (q *queries) SaveRefundRequest(ctx context.Context, r canteen.RefundRequest) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO refund_requests (id, user_email, order_id, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status`,
		r.ID, r.UserEmail, r.OrderID, r.Reason, r.Status, fmtTime(r.CreatedAt))
	return err
}

func (q *queries) ListRefundRequests(ctx context.Context) ([]canteen.RefundRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_email, order_id, COALESCE(reason,''), status, created_at
		FROM refund_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []canteen.RefundRequest
	for rows.Next() {
		r, err := scanRefundRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}
