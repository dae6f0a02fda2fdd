/*
Package analytics is a read-only reporting projection over the order log.

PURPOSE:
  Buckets orders by period and sums revenue/volume for the admin dashboard.
  There is no dedicated analytics store; everything is recomputed from
  orders on each request.

RULES:
  - Cancelled orders count toward order volume but contribute no revenue
  - All timestamps are treated uniformly in UTC so a bucket is never
    misassigned across server/client time zones
  - daily covers the last 7 days, weekly the last 4 weeks, monthly the
    last 6 months
*/
package analytics

import (
	"fmt"
	"time"

	"github.com/warp/canteen-engine/canteen"
)

// Granularity selects the bucketing period of a revenue series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// windowDays returns how far back a granularity looks.
func (g Granularity) windowDays() int {
	switch g {
	case Daily:
		return 7
	case Weekly:
		return 28
	case Monthly:
		return 180
	}
	return 0
}

// Point is one bucket of the revenue series.
type Point struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"value"`
	Orders  int     `json:"orders"`
}

// Series buckets non-cancelled revenue and total order volume for the
// window ending at now. Buckets are emitted oldest first, empty buckets
// included, so charts always have a full axis.
func Series(orders []canteen.Order, g Granularity, now time.Time) []Point {
	days := g.windowDays()
	if days == 0 {
		return []Point{}
	}
	now = now.UTC()

	type bucket struct {
		revenue canteen.Money
		orders  int
	}
	buckets := make(map[string]*bucket)
	var labels []string
	for i := days; i >= 0; i-- {
		label := bucketLabel(now.AddDate(0, 0, -i), g)
		if _, ok := buckets[label]; !ok {
			buckets[label] = &bucket{revenue: canteen.ZeroMoney()}
			labels = append(labels, label)
		}
	}

	for _, o := range orders {
		at := o.CreatedAt.UTC()
		if at.IsZero() || now.Sub(at) > time.Duration(days)*24*time.Hour {
			continue
		}
		b, ok := buckets[bucketLabel(at, g)]
		if !ok {
			continue
		}
		b.orders++
		if o.Status != canteen.StatusCancelled {
			b.revenue = b.revenue.Add(o.Total)
		}
	}

	points := make([]Point, 0, len(labels))
	for _, label := range labels {
		b := buckets[label]
		points = append(points, Point{
			Date:    label,
			Revenue: b.revenue.InexactFloat64(),
			Orders:  b.orders,
		})
	}
	return points
}

func bucketLabel(at time.Time, g Granularity) string {
	switch g {
	case Daily:
		return at.Format("Jan 02")
	case Weekly:
		_, week := at.ISOWeek()
		return fmt.Sprintf("Week %02d", week)
	case Monthly:
		return at.Format("Jan 2006")
	}
	return ""
}

// =============================================================================
// DASHBOARD TOTALS
// =============================================================================

// Dashboard aggregates the admin overview numbers.
type Dashboard struct {
	TotalUsers      int
	TotalCanteens   int
	TotalOrders     int
	TotalRevenue    canteen.Money
	CancelledOrders int
	TotalRefunded   canteen.Money
}

// Summarize computes dashboard totals from the full user and order logs.
func Summarize(users []canteen.User, orders []canteen.Order) Dashboard {
	d := Dashboard{
		TotalRevenue:  canteen.ZeroMoney(),
		TotalRefunded: canteen.ZeroMoney(),
	}
	for _, u := range users {
		d.TotalUsers++
		if u.Role == canteen.RoleCanteen {
			d.TotalCanteens++
		}
	}
	for _, o := range orders {
		d.TotalOrders++
		if o.Status == canteen.StatusCancelled {
			d.CancelledOrders++
			d.TotalRefunded = d.TotalRefunded.Add(o.RefundAmount)
		} else {
			d.TotalRevenue = d.TotalRevenue.Add(o.Total)
		}
	}
	return d
}

// =============================================================================
// PER-PRODUCT SALES
// =============================================================================

// ProductSales is a product's unit sales over the last 7 days, bucketed by
// weekday. Cancelled orders are excluded entirely.
type ProductSales struct {
	Days      []string `json:"dates"`
	Quantity  []int    `json:"sales_data"`
	TotalSold int      `json:"total_sold"`
}

// SalesForProduct sums quantities of one product across recent orders.
func SalesForProduct(orders []canteen.Order, productID string, now time.Time) ProductSales {
	now = now.UTC()

	byDay := make(map[string]int)
	var days []string
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("Mon")
		byDay[day] = 0
		days = append(days, day)
	}

	total := 0
	for _, o := range orders {
		if o.Status == canteen.StatusCancelled {
			continue
		}
		at := o.CreatedAt.UTC()
		if at.IsZero() || now.Sub(at) > 7*24*time.Hour {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID != productID {
				continue
			}
			day := at.Format("Mon")
			if _, ok := byDay[day]; ok {
				byDay[day] += item.Quantity
			}
			total += item.Quantity
		}
	}

	quantity := make([]int, len(days))
	for i, day := range days {
		quantity[i] = byDay[day]
	}
	return ProductSales{Days: days, Quantity: quantity, TotalSold: total}
}
