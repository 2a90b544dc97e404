package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/order"
	"github.com/shopspring/decimal"
)

// DayCount is the number of orders placed on one weekday
type DayCount struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
}

// HourCount is the number of orders placed in one hour of the day
type HourCount struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

// OrderTrends buckets orders of a trailing window by weekday and hour (UTC).
// BusiestDay and BusiestHour are nil when the window holds no orders.
type OrderTrends struct {
	Days            int                       `json:"days"`
	Since           time.Time                 `json:"since"`
	TotalOrders     int                       `json:"total_orders"`
	ByWeekday       []DayCount                `json:"orders_by_weekday"`
	ByHour          []HourCount               `json:"orders_by_hour"`
	BusiestDay      *string                   `json:"busiest_day"`
	BusiestHour     *int                      `json:"busiest_hour"`
	StatusBreakdown map[order.OrderStatus]int `json:"status_breakdown"`
	CompletionRate  decimal.Decimal           `json:"completion_rate"`
}

// OrderTrends reports when orders are placed and how many were delivered.
// Cancelled orders are counted.
func (s *Service) OrderTrends(ctx context.Context, days int) (*OrderTrends, error) {
	since, err := s.windowStart(days)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindPlacedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	var weekdays [7]int
	var hours [24]int
	trends := &OrderTrends{
		Days:            days,
		Since:           since,
		TotalOrders:     len(orders),
		StatusBreakdown: make(map[order.OrderStatus]int, len(order.AllStatuses)),
		CompletionRate:  decimal.Zero,
	}
	for _, st := range order.AllStatuses {
		trends.StatusBreakdown[st] = 0
	}
	for _, o := range orders {
		created := o.CreatedAt.UTC()
		weekdays[created.Weekday()]++
		hours[created.Hour()]++
		trends.StatusBreakdown[o.Status]++
	}

	trends.ByWeekday = make([]DayCount, 0, len(weekdays))
	for d, n := range weekdays {
		trends.ByWeekday = append(trends.ByWeekday, DayCount{Day: time.Weekday(d).String(), Orders: n})
	}
	trends.ByHour = make([]HourCount, 0, len(hours))
	for h, n := range hours {
		trends.ByHour = append(trends.ByHour, HourCount{Hour: h, Orders: n})
	}

	if len(orders) == 0 {
		return trends, nil
	}

	day := time.Weekday(busiest(weekdays[:])).String()
	hour := busiest(hours[:])
	trends.BusiestDay = &day
	trends.BusiestHour = &hour
	trends.CompletionRate = decimal.NewFromInt(int64(trends.StatusBreakdown[order.StatusDelivered])).
		DivRound(decimal.NewFromInt(int64(len(orders))), 4)
	return trends, nil
}

// busiest returns the index of the largest count, the earliest on ties
func busiest(counts []int) int {
	best := 0
	for i, n := range counts {
		if n > counts[best] {
			best = i
		}
	}
	return best
}
