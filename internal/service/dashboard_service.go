package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// DashboardStats is the back-office overview.
type DashboardStats struct {
	Revenue           float64                    `json:"revenue"`
	TotalOrders       int                        `json:"totalOrders"`
	ItemsSold         int                        `json:"itemsSold"`
	AverageOrderValue float64                    `json:"averageOrderValue"`
	OrdersByStatus    map[models.OrderStatus]int `json:"ordersByStatus"`
	TopCakes          []TopCake                  `json:"topCakes"`
	RevenueByDay      []DailyRevenue             `json:"revenueByDay"`
	Counts            DashboardCounts            `json:"counts"`
}

// TopCake is a best seller by quantity.
type TopCake struct {
	CakeID   string  `json:"cakeId"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DailyRevenue is the revenue of one calendar day.
type DailyRevenue struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// DashboardCounts are plain entity counts.
type DashboardCounts struct {
	Cakes    int `json:"cakes"`
	Users    int `json:"users"`
	Contacts int `json:"contacts"`
}

// DashboardService aggregates upstream data for the back-office overview.
type DashboardService struct {
	api AdminAPI
	now func() time.Time
}

func NewDashboardService(api AdminAPI) *DashboardService {
	return &DashboardService{api: api, now: time.Now}
}

// Stats builds the overview for the last days days.
func (s *DashboardService) Stats(ctx context.Context, admin *models.AdminSession, days int) (*DashboardStats, error) {
	if days <= 0 || days > 90 {
		days = 7
	}
	token := admin.UpstreamToken

	orders, err := s.api.ListOrders(ctx, token)
	if err != nil {
		return nil, upstreamErr(err)
	}
	cakes, err := s.api.ListCakes(ctx)
	if err != nil {
		return nil, upstreamErr(err)
	}
	users, err := s.api.ListUsers(ctx, token)
	if err != nil {
		return nil, upstreamErr(err)
	}
	contacts, err := s.api.ListContacts(ctx, token)
	if err != nil {
		return nil, upstreamErr(err)
	}

	stats := ComputeDashboard(orders, s.now(), days, 5)
	stats.Counts = DashboardCounts{Cakes: len(cakes), Users: len(users), Contacts: len(contacts)}
	return stats, nil
}

// ComputeDashboard derives the order figures. Cancelled orders count in
// OrdersByStatus only.
func ComputeDashboard(orders []models.Order, now time.Time, days, top int) *DashboardStats {
	stats := &DashboardStats{
		OrdersByStatus: make(map[models.OrderStatus]int),
		TopCakes:       []TopCake{},
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	first := today.AddDate(0, 0, -(days - 1))
	daily := make([]decimal.Decimal, days)
	dailyOrders := make([]int, days)

	revenue := decimal.Zero
	type cakeAgg struct {
		title   string
		qty     int
		revenue decimal.Decimal
		order   int
	}
	byCake := make(map[string]*cakeAgg)

	for _, o := range orders {
		stats.OrdersByStatus[o.Status]++
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		stats.TotalOrders++
		total := decimal.NewFromFloat(o.Totals.GrandTotal)
		revenue = revenue.Add(total)

		for _, it := range o.Items {
			stats.ItemsSold += it.Quantity
			agg, ok := byCake[it.CakeID]
			if !ok {
				agg = &cakeAgg{title: it.Title, order: len(byCake)}
				byCake[it.CakeID] = agg
			}
			agg.qty += it.Quantity
			agg.revenue = agg.revenue.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		created := o.CreatedAt.In(now.Location())
		if created.IsZero() || created.Before(first) {
			continue
		}
		day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, now.Location())
		idx := int(math.Round(day.Sub(first).Hours() / 24))
		if idx >= 0 && idx < days {
			daily[idx] = daily[idx].Add(total)
			dailyOrders[idx]++
		}
	}

	stats.Revenue = revenue.InexactFloat64()
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(stats.TotalOrders))).Round(2).InexactFloat64()
	}

	ids := make([]string, 0, len(byCake))
	for id := range byCake {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := byCake[ids[i]], byCake[ids[j]]
		if a.qty != b.qty {
			return a.qty > b.qty
		}
		return a.order < b.order
	})
	if len(ids) > top {
		ids = ids[:top]
	}
	for _, id := range ids {
		a := byCake[id]
		stats.TopCakes = append(stats.TopCakes, TopCake{CakeID: id, Title: a.title, Quantity: a.qty, Revenue: a.revenue.InexactFloat64()})
	}

	stats.RevenueByDay = make([]DailyRevenue, days)
	for i := range daily {
		stats.RevenueByDay[i] = DailyRevenue{
			Date:    first.AddDate(0, 0, i).Format("2006-01-02"),
			Orders:  dailyOrders[i],
			Revenue: daily[i].InexactFloat64(),
		}
	}
	return stats
}
