package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/canteen-engine/analytics"
	"github.com/warp/canteen-engine/canteen"
)

func order(id string, total int64, status canteen.Status, at time.Time) canteen.Order {
	o := canteen.Order{
		ID:        id,
		UserEmail: "alice@campus.edu",
		Total:     canteen.MoneyFromInt(total),
		Status:    status,
		CreatedAt: at,
	}
	if status == canteen.StatusCancelled {
		o.RefundAmount = o.Total
	}
	return o
}

func TestSeries_DailyBucketing(t *testing.T) {
	// GIVEN: Orders three days ago and today
	// WHEN: Building the daily series
	// THEN: Each lands in its own UTC-day bucket; all 8 buckets are present

	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC)
	orders := []canteen.Order{
		order("o1", 40, canteen.StatusCompleted, now.AddDate(0, 0, -3)),
		order("o2", 25, canteen.StatusPending, now),
	}

	points := analytics.Series(orders, analytics.Daily, now)
	require.Len(t, points, 8, "7-day window plus today")

	byDate := make(map[string]analytics.Point)
	for _, p := range points {
		byDate[p.Date] = p
	}
	assert.Equal(t, 40.0, byDate["May 07"].Revenue)
	assert.Equal(t, 1, byDate["May 07"].Orders)
	assert.Equal(t, 25.0, byDate["May 10"].Revenue)
	assert.Equal(t, 0.0, byDate["May 08"].Revenue, "empty buckets are emitted")
}

func TestSeries_CancelledCountsVolumeNotRevenue(t *testing.T) {
	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC)
	orders := []canteen.Order{
		order("o1", 40, canteen.StatusCompleted, now),
		order("o2", 60, canteen.StatusCancelled, now),
	}

	points := analytics.Series(orders, analytics.Daily, now)
	last := points[len(points)-1]
	assert.Equal(t, 40.0, last.Revenue, "cancelled orders contribute no revenue")
	assert.Equal(t, 2, last.Orders, "cancelled orders still count as volume")
}

func TestSeries_OrdersOutsideWindowIgnored(t *testing.T) {
	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC)
	orders := []canteen.Order{
		order("old", 500, canteen.StatusCompleted, now.AddDate(0, 0, -30)),
	}

	for _, p := range analytics.Series(orders, analytics.Daily, now) {
		assert.Equal(t, 0.0, p.Revenue)
		assert.Equal(t, 0, p.Orders)
	}
}

func TestSeries_BucketsAreOldestFirst(t *testing.T) {
	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC)
	points := analytics.Series(nil, analytics.Daily, now)
	require.Len(t, points, 8)
	assert.Equal(t, "May 03", points[0].Date)
	assert.Equal(t, "May 10", points[len(points)-1].Date)
}

func TestSummarize_Totals(t *testing.T) {
	now := time.Now().UTC()
	users := []canteen.User{
		{Email: "a@x", Role: canteen.RoleUser},
		{Email: "b@x", Role: canteen.RoleCanteen},
		{Email: "c@x", Role: canteen.RoleAdmin},
	}
	orders := []canteen.Order{
		order("o1", 40, canteen.StatusCompleted, now),
		order("o2", 25, canteen.StatusPending, now),
		order("o3", 60, canteen.StatusCancelled, now),
	}

	d := analytics.Summarize(users, orders)
	assert.Equal(t, 3, d.TotalUsers)
	assert.Equal(t, 1, d.TotalCanteens)
	assert.Equal(t, 3, d.TotalOrders)
	assert.Equal(t, 1, d.CancelledOrders)
	assert.True(t, d.TotalRevenue.Equal(canteen.MoneyFromInt(65)))
	assert.True(t, d.TotalRefunded.Equal(canteen.MoneyFromInt(60)))
}

func TestSalesForProduct_WeekdayBuckets(t *testing.T) {
	// GIVEN: Orders containing the product today and 2 days ago, plus a
	//        cancelled one
	// WHEN: Building the 7-day sales series
	// THEN: Quantities land on the right weekdays; cancelled is excluded

	now := time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC) // a Sunday
	item := func(qty int) []canteen.OrderItem {
		return []canteen.OrderItem{{ProductID: "samosa", Name: "Samosa", Price: canteen.MoneyFromInt(20), Quantity: qty}}
	}
	orders := []canteen.Order{
		{ID: "o1", Items: item(2), Status: canteen.StatusCompleted, CreatedAt: now},
		{ID: "o2", Items: item(3), Status: canteen.StatusPending, CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "o3", Items: item(5), Status: canteen.StatusCancelled, CreatedAt: now},
	}

	sales := analytics.SalesForProduct(orders, "samosa", now)
	require.Len(t, sales.Days, 7)
	assert.Equal(t, "Sun", sales.Days[6])
	assert.Equal(t, 2, sales.Quantity[6])
	assert.Equal(t, "Fri", sales.Days[4])
	assert.Equal(t, 3, sales.Quantity[4])
	assert.Equal(t, 5, sales.TotalSold)
}
