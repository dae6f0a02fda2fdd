/*
Package mongo provides a MongoDB-backed canteen.TxStore.

PURPOSE:
  Hosted document storage for deployments that outgrow a single SQLite
  file. Each collection maps one-to-one onto a store collection; orders
  embed their item lines the way the API returns them.

TRANSACTIONS:
  WithTx runs the closure inside a driver session transaction, so the
  read-check-write pattern (re-read balance, debit, write order) commits
  or aborts as a unit. Multi-document transactions require a replica set
  or mongos; a standalone mongod will reject them.

MONEY & TIME:
  Currency amounts are stored as decimal strings, never floats.
  Timestamps are BSON datetimes in UTC.

SEE ALSO:
  - canteen/store.go: interface definitions
  - store/sqlite: single-node implementation
*/
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/warp/canteen-engine/canteen"
)

// Store implements canteen.TxStore on MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and prepares the collections.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		"orders": {
			{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"coupons": {
			{Keys: bson.D{{Key: "used_by", Value: 1}, {Key: "used_at", Value: -1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		"adjustments": {
			{Keys: bson.D{{Key: "user_email", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}
	for coll, models := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("collection %s: %w", coll, err)
		}
	}
	return nil
}

// WithTx runs fn inside a session transaction. The store handed to fn
// routes every operation through the session context regardless of the
// context the caller passes in.
func (s *Store) WithTx(ctx context.Context, fn func(canteen.Store) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(&txStore{store: s, sc: sc})
	})
	return err
}

// txStore pins every store call to the session context.
type txStore struct {
	store *Store
	sc    mongo.SessionContext
}

func (t *txStore) GetUser(_ context.Context, email string) (*canteen.User, error) {
	return t.store.GetUser(t.sc, email)
}
func (t *txStore) SaveUser(_ context.Context, u canteen.User) error {
	return t.store.SaveUser(t.sc, u)
}
func (t *txStore) DeleteUser(_ context.Context, email string) error {
	return t.store.DeleteUser(t.sc, email)
}
func (t *txStore) ListUsers(_ context.Context) ([]canteen.User, error) {
	return t.store.ListUsers(t.sc)
}
func (t *txStore) ListUsersByRole(_ context.Context, role canteen.Role) ([]canteen.User, error) {
	return t.store.ListUsersByRole(t.sc, role)
}
func (t *txStore) GetProduct(_ context.Context, id string) (*canteen.Product, error) {
	return t.store.GetProduct(t.sc, id)
}
func (t *txStore) SaveProduct(_ context.Context, p canteen.Product) error {
	return t.store.SaveProduct(t.sc, p)
}
func (t *txStore) DeleteProduct(_ context.Context, id string) error {
	return t.store.DeleteProduct(t.sc, id)
}
func (t *txStore) ListProducts(_ context.Context) ([]canteen.Product, error) {
	return t.store.ListProducts(t.sc)
}
func (t *txStore) GetOrder(_ context.Context, id string) (*canteen.Order, error) {
	return t.store.GetOrder(t.sc, id)
}
func (t *txStore) SaveOrder(_ context.Context, o canteen.Order) error {
	return t.store.SaveOrder(t.sc, o)
}
func (t *txStore) ListOrdersByUser(_ context.Context, email string) ([]canteen.Order, error) {
	return t.store.ListOrdersByUser(t.sc, email)
}
func (t *txStore) ListOrders(_ context.Context, f canteen.OrderFilter) ([]canteen.Order, error) {
	return t.store.ListOrders(t.sc, f)
}
func (t *txStore) GetCoupon(_ context.Context, code string) (*canteen.Coupon, error) {
	return t.store.GetCoupon(t.sc, code)
}
func (t *txStore) SaveCoupon(_ context.Context, c canteen.Coupon) error {
	return t.store.SaveCoupon(t.sc, c)
}
func (t *txStore) ListCoupons(_ context.Context) ([]canteen.Coupon, error) {
	return t.store.ListCoupons(t.sc)
}
func (t *txStore) ListRedeemedCoupons(_ context.Context, email string) ([]canteen.Coupon, error) {
	return t.store.ListRedeemedCoupons(t.sc, email)
}
func (t *txStore) SaveNotification(_ context.Context, n canteen.Notification) error {
	return t.store.SaveNotification(t.sc, n)
}
func (t *txStore) ListNotifications(_ context.Context, email string, limit int) ([]canteen.Notification, error) {
	return t.store.ListNotifications(t.sc, email, limit)
}
func (t *txStore) MarkNotificationRead(_ context.Context, id string) error {
	return t.store.MarkNotificationRead(t.sc, id)
}
func (t *txStore) SaveAdjustment(_ context.Context, a canteen.Adjustment) error {
	return t.store.SaveAdjustment(t.sc, a)
}
func (t *txStore) ListAdjustments(_ context.Context, email string) ([]canteen.Adjustment, error) {
	return t.store.ListAdjustments(t.sc, email)
}
func (t *txStore) GetRefundRequest(_ context.Context, id string) (*canteen.RefundRequest, error) {
	return t.store.GetRefundRequest(t.sc, id)
}
func (t *txStore) SaveRefundRequest(_ context.Context, r canteen.RefundRequest) error {
	return t.store.SaveRefundRequest(t.sc, r)
}
func (t *txStore) ListRefundRequests(_ context.Context) ([]canteen.RefundRequest, error) {
	return t.store.ListRefundRequests(t.sc)
}

// =============================================================================
// DOCUMENTS - BSON shapes with money as decimal strings
// =============================================================================

type userDoc struct {
	Email        string    `bson:"_id"`
	PasswordHash string    `bson:"password_hash"`
	Name         string    `bson:"name"`
	Role         string    `bson:"role"`
	Balance      string    `bson:"balance"`
	Active       bool      `bson:"active"`
	ResetToken   string    `bson:"reset_token,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty"`
}

func toUserDoc(u canteen.User) userDoc {
	return userDoc{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         string(u.Role),
		Balance:      u.Balance.String(),
		Active:       u.Active,
		ResetToken:   u.ResetToken,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toUser() canteen.User {
	return canteen.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Role:         canteen.Role(d.Role),
		Balance:      canteen.MustParseMoney(d.Balance),
		Active:       d.Active,
		ResetToken:   d.ResetToken,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type productDoc struct {
	ID           string `bson:"_id"`
	Name         string `bson:"name"`
	Price        string `bson:"price"`
	Category     string `bson:"category,omitempty"`
	Availability string `bson:"availability"`
	ImageURL     string `bson:"image_url,omitempty"`
}

func toProductDoc(p canteen.Product) productDoc {
	return productDoc{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price.String(),
		Category:     p.Category,
		Availability: p.Availability,
		ImageURL:     p.ImageURL,
	}
}

func (d productDoc) toProduct() canteen.Product {
	return canteen.Product{
		ID:           d.ID,
		Name:         d.Name,
		Price:        canteen.MustParseMoney(d.Price),
		Category:     d.Category,
		Availability: d.Availability,
		ImageURL:     d.ImageURL,
	}
}

type orderItemDoc struct {
	ProductID string `bson:"id"`
	Name      string `bson:"name"`
	Price     string `bson:"price"`
	Quantity  int    `bson:"quantity"`
	Category  string `bson:"category,omitempty"`
	ImageURL  string `bson:"image_url,omitempty"`
}

type mealSlotDoc struct {
	Start string `bson:"start,omitempty"`
	End   string `bson:"end,omitempty"`
	Label string `bson:"label,omitempty"`
}

type orderDoc struct {
	ID             string         `bson:"_id"`
	UserEmail      string         `bson:"user_email"`
	Items          []orderItemDoc `bson:"items"`
	Subtotal       string         `bson:"subtotal"`
	DeliveryCharge string         `bson:"delivery_charge"`
	Total          string         `bson:"total"`
	Status         string         `bson:"status"`
	StatusReason   string         `bson:"status_reason,omitempty"`
	DeliveryOption string         `bson:"delivery_option"`
	Classroom      string         `bson:"classroom,omitempty"`
	ScheduledTime  string         `bson:"scheduled_time,omitempty"`
	MealTiming     string         `bson:"meal_timing,omitempty"`
	TimingSlot     mealSlotDoc    `bson:"timing_slot,omitempty"`
	RefundAmount   string         `bson:"refund_amount,omitempty"`
	CancelledAt    time.Time      `bson:"cancelled_at,omitempty"`
	CreatedAt      time.Time      `bson:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at,omitempty"`
}

func toOrderDoc(o canteen.Order) orderDoc {
	items := make([]orderItemDoc, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.String(),
			Quantity:  it.Quantity,
			Category:  it.Category,
			ImageURL:  it.ImageURL,
		}
	}
	return orderDoc{
		ID:             o.ID,
		UserEmail:      o.UserEmail,
		Items:          items,
		Subtotal:       o.Subtotal.String(),
		DeliveryCharge: o.DeliveryCharge.String(),
		Total:          o.Total.String(),
		Status:         string(o.Status),
		StatusReason:   o.StatusReason,
		DeliveryOption: o.DeliveryOption,
		Classroom:      o.Classroom,
		ScheduledTime:  o.ScheduledTime,
		MealTiming:     o.MealTiming,
		TimingSlot: mealSlotDoc{
			Start: o.TimingSlot.Start,
			End:   o.TimingSlot.End,
			Label: o.TimingSlot.Label,
		},
		RefundAmount: o.RefundAmount.String(),
		CancelledAt:  o.CancelledAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (d orderDoc) toOrder() canteen.Order {
	items := make([]canteen.OrderItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = canteen.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     canteen.MustParseMoney(it.Price),
			Quantity:  it.Quantity,
			Category:  it.Category,
			ImageURL:  it.ImageURL,
		}
	}
	refund := canteen.ZeroMoney()
	if d.RefundAmount != "" {
		refund = canteen.MustParseMoney(d.RefundAmount)
	}
	return canteen.Order{
		ID:             d.ID,
		UserEmail:      d.UserEmail,
		Items:          items,
		Subtotal:       canteen.MustParseMoney(d.Subtotal),
		DeliveryCharge: canteen.MustParseMoney(d.DeliveryCharge),
		Total:          canteen.MustParseMoney(d.Total),
		Status:         canteen.Status(d.Status),
		StatusReason:   d.StatusReason,
		DeliveryOption: d.DeliveryOption,
		Classroom:      d.Classroom,
		ScheduledTime:  d.ScheduledTime,
		MealTiming:     d.MealTiming,
		TimingSlot: canteen.MealSlot{
			Start: d.TimingSlot.Start,
			End:   d.TimingSlot.End,
			Label: d.TimingSlot.Label,
		},
		RefundAmount: refund,
		CancelledAt:  d.CancelledAt.UTC(),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type couponDoc struct {
	Code      string    `bson:"_id"`
	Amount    string    `bson:"amount"`
	Expiry    string    `bson:"expiry"`
	Used      bool      `bson:"used"`
	UsedBy    string    `bson:"used_by,omitempty"`
	UsedAt    time.Time `bson:"used_at,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func toCouponDoc(c canteen.Coupon) couponDoc {
	return couponDoc{
		Code:      c.Code,
		Amount:    c.Amount.String(),
		Expiry:    c.Expiry,
		Used:      c.Used,
		UsedBy:    c.UsedBy,
		UsedAt:    c.UsedAt,
		CreatedAt: c.CreatedAt,
	}
}

func (d couponDoc) toCoupon() canteen.Coupon {
	return canteen.Coupon{
		Code:      d.Code,
		Amount:    canteen.MustParseMoney(d.Amount),
		Expiry:    d.Expiry,
		Used:      d.Used,
		UsedBy:    d.UsedBy,
		UsedAt:    d.UsedAt.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type notificationDoc struct {
	ID        string    `bson:"_id"`
	UserEmail string    `bson:"user_email"`
	Type      string    `bson:"type"`
	Message   string    `bson:"message"`
	OrderID   string    `bson:"order_id,omitempty"`
	Read      bool      `bson:"read"`
	Timestamp time.Time `bson:"timestamp"`
}

type adjustmentDoc struct {
	ID          string    `bson:"_id"`
	UserEmail   string    `bson:"user_email"`
	Amount      string    `bson:"amount"`
	Type        string    `bson:"type"`
	Description string    `bson:"description,omitempty"`
	Timestamp   time.Time `bson:"timestamp"`
}

type refundRequestDoc struct {
	ID        string    `bson:"_id"`
	UserEmail string    `bson:"user_email"`
	OrderID   string    `bson:"order_id"`
	Reason    string    `bson:"reason,omitempty"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
}

// =============================================================================
// STORE METHODS
// =============================================================================

var upsert = options.Replace().SetUpsert(true)

func (s *Store) GetUser(ctx context.Context, email string) (*canteen.User, error) {
	var d userDoc
	err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": email}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := d.toUser()
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u canteen.User) error {
	_, err := s.db.Collection("users").ReplaceOne(ctx, bson.M{"_id": u.Email}, toUserDoc(u), upsert)
	return err
}

func (s *Store) DeleteUser(ctx context.Context, email string) error {
	_, err := s.db.Collection("users").DeleteOne(ctx, bson.M{"_id": email})
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]canteen.User, error) {
	return s.queryUsers(ctx, bson.M{})
}

func (s *Store) ListUsersByRole(ctx context.Context, role canteen.Role) ([]canteen.User, error) {
	return s.queryUsers(ctx, bson.M{"role": string(role)})
}

func (s *Store) queryUsers(ctx context.Context, filter bson.M) ([]canteen.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.db.Collection("users").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []canteen.User
	for cur.Next(ctx) {
		var d userDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		users = append(users, d.toUser())
	}
	return users, cur.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (*canteen.Product, error) {
	var d productDoc
	err := s.db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := d.toProduct()
	return &p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p canteen.Product) error {
	_, err := s.db.Collection("products").ReplaceOne(ctx, bson.M{"_id": p.ID}, toProductDoc(p), upsert)
	return err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) ListProducts(ctx context.Context) ([]canteen.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.db.Collection("products").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var products []canteen.Product
	for cur.Next(ctx) {
		var d productDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		products = append(products, d.toProduct())
	}
	return products, cur.Err()
}

func (s *Store) GetOrder(ctx context.Context, id string) (*canteen.Order, error) {
	var d orderDoc
	err := s.db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o := d.toOrder()
	return &o, nil
}

func (s *Store) SaveOrder(ctx context.Context, o canteen.Order) error {
	_, err := s.db.Collection("orders").ReplaceOne(ctx, bson.M{"_id": o.ID}, toOrderDoc(o), upsert)
	return err
}

func (s *Store) ListOrdersByUser(ctx context.Context, email string) ([]canteen.Order, error) {
	return s.queryOrders(ctx, bson.M{"user_email": email})
}

func (s *Store) ListOrders(ctx context.Context, filter canteen.OrderFilter) ([]canteen.Order, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if !filter.Day.IsZero() {
		day := filter.Day.UTC()
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		query["created_at"] = bson.M{"$gte": start, "$lt": start.AddDate(0, 0, 1)}
	}
	return s.queryOrders(ctx, query)
}

func (s *Store) queryOrders(ctx context.Context, filter bson.M) ([]canteen.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.db.Collection("orders").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orders []canteen.Order
	for cur.Next(ctx) {
		var d orderDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		orders = append(orders, d.toOrder())
	}
	return orders, cur.Err()
}

func (s *Store) GetCoupon(ctx context.Context, code string) (*canteen.Coupon, error) {
	var d couponDoc
	err := s.db.Collection("coupons").FindOne(ctx, bson.M{"_id": code}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := d.toCoupon()
	return &c, nil
}

func (s *Store) SaveCoupon(ctx context.Context, c canteen.Coupon) error {
	_, err := s.db.Collection("coupons").ReplaceOne(ctx, bson.M{"_id": c.Code}, toCouponDoc(c), upsert)
	return err
}

func (s *Store) ListCoupons(ctx context.Context) ([]canteen.Coupon, error) {
	return s.queryCoupons(ctx, bson.M{}, bson.D{{Key: "created_at", Value: -1}})
}

func (s *Store) ListRedeemedCoupons(ctx context.Context, email string) ([]canteen.Coupon, error) {
	return s.queryCoupons(ctx, bson.M{"used": true, "used_by": email}, bson.D{{Key: "used_at", Value: -1}})
}

func (s *Store) queryCoupons(ctx context.Context, filter bson.M, sort bson.D) ([]canteen.Coupon, error) {
	cur, err := s.db.Collection("coupons").Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var coupons []canteen.Coupon
	for cur.Next(ctx) {
		var d couponDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		coupons = append(coupons, d.toCoupon())
	}
	return coupons, cur.Err()
}

func (s *Store) SaveNotification(ctx context.Context, n canteen.Notification) error {
	doc := notificationDoc{
		ID:        n.ID,
		UserEmail: n.UserEmail,
		Type:      n.Type,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read,
		Timestamp: n.Timestamp,
	}
	_, err := s.db.Collection("notifications").ReplaceOne(ctx, bson.M{"_id": n.ID}, doc, upsert)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, email string, limit int) ([]canteen.Notification, error) {
	if limit <= 0 {
		limit = canteen.NotificationLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.db.Collection("notifications").Find(ctx, bson.M{"user_email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var notifications []canteen.Notification
	for cur.Next(ctx) {
		var d notificationDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		notifications = append(notifications, canteen.Notification{
			ID:        d.ID,
			UserEmail: d.UserEmail,
			Type:      d.Type,
			Message:   d.Message,
			OrderID:   d.OrderID,
			Read:      d.Read,
			Timestamp: d.Timestamp.UTC(),
		})
	}
	return notifications, cur.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.Collection("notifications").UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	return err
}

func (s *Store) SaveAdjustment(ctx context.Context, a canteen.Adjustment) error {
	doc := adjustmentDoc{
		ID:          a.ID,
		UserEmail:   a.UserEmail,
		Amount:      a.Amount.String(),
		Type:        a.Type,
		Description: a.Description,
		Timestamp:   a.Timestamp,
	}
	_, err := s.db.Collection("adjustments").InsertOne(ctx, doc)
	return err
}

func (s *Store) ListAdjustments(ctx context.Context, email string) ([]canteen.Adjustment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.db.Collection("adjustments").Find(ctx, bson.M{"user_email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var adjustments []canteen.Adjustment
	for cur.Next(ctx) {
		var d adjustmentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, canteen.Adjustment{
			ID:          d.ID,
			UserEmail:   d.UserEmail,
			Amount:      canteen.MustParseMoney(d.Amount),
			Type:        d.Type,
			Description: d.Description,
			Timestamp:   d.Timestamp.UTC(),
		})
	}
	return adjustments, cur.Err()
}

func (s *Store) GetRefundRequest(ctx context.Context, id string) (*canteen.RefundRequest, error) {
	var d refundRequestDoc
	err := s.db.Collection("refund_requests").FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &canteen.RefundRequest{
		ID:        d.ID,
		UserEmail: d.UserEmail,
		OrderID:   d.OrderID,
		Reason:    d.Reason,
		Status:    d.Status,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

func (s *Store) SaveRefundRequest(ctx context.Context, r canteen.RefundRequest) error {
	doc := refundRequestDoc{
		ID:        r.ID,
		UserEmail: r.UserEmail,
		OrderID:   r.OrderID,
		Reason:    r.Reason,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
	_, err := s.db.Collection("refund_requests").ReplaceOne(ctx, bson.M{"_id": r.ID}, doc, upsert)
	return err
}

func (s *Store) ListRefundRequests(ctx context.Context) ([]canteen.RefundRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.db.Collection("refund_requests").Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var requests []canteen.RefundRequest
	for cur.Next(ctx) {
		var d refundRequestDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		requests = append(requests, canteen.RefundRequest{
			ID:        d.ID,
			UserEmail: d.UserEmail,
			OrderID:   d.OrderID,
			Reason:    d.Reason,
			Status:    d.Status,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return requests, cur.Err()
}
