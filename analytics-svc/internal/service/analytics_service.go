package service

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"sendr/analytics-svc/internal/domain"
	"sendr/pkg/stats"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const vendorTopProducts = 5

type AnalyticsService struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewAnalyticsService(db *sql.DB, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{db: db, rdb: rdb}
}

// VendorDay reads the vendor's counters for day, falling back to the orders
// table when the counters have expired or were never written.
func (s *AnalyticsService) VendorDay(ctx context.Context, vendorID, day string) (*domain.VendorDaySummary, error) {
	summary := &domain.VendorDaySummary{
		VendorID:        vendorID,
		Date:            day,
		StatusBreakdown: map[string]int{},
		Source:          domain.SourceCache,
	}

	fields, err := s.rdb.HGetAll(ctx, stats.VendorDay(day, vendorID)).Result()
	if err != nil || len(fields) == 0 {
		if err := s.vendorDayFromDB(ctx, summary); err != nil {
			return nil, err
		}
	} else {
		for field, raw := range fields {
			switch {
			case field == stats.FieldOrders:
				summary.Orders, _ = strconv.Atoi(raw)
			case field == stats.FieldRevenue:
				summary.Revenue, _ = strconv.ParseFloat(raw, 64)
			case strings.HasPrefix(field, stats.StatusPrefix):
				summary.StatusBreakdown[strings.TrimPrefix(field, stats.StatusPrefix)], _ = strconv.Atoi(raw)
			}
		}
	}

	top, err := s.topProducts(ctx, day, vendorID, vendorTopProducts)
	if err != nil {
		return nil, err
	}
	summary.TopProducts = top
	return summary, nil
}

func (s *AnalyticsService) vendorDayFromDB(ctx context.Context, summary *domain.VendorDaySummary) error {
	summary.Source = domain.SourceOrders

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE vendor_id = $1 AND (created_at AT TIME ZONE 'UTC')::date = $2::date
		GROUP BY status
	`, summary.VendorID, summary.Date)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
			total  float64
		)
		if err := rows.Scan(&status, &count, &total); err != nil {
			return err
		}
		summary.StatusBreakdown[status] = count
		summary.Orders += count
		summary.Revenue += total
	}
	return rows.Err()
}

// TopProducts ranks products across all vendors by units ordered on day.
func (s *AnalyticsService) TopProducts(ctx context.Context, day string, limit int) ([]domain.ProductAnalytics, error) {
	return s.topProducts(ctx, day, stats.AllVendors, limit)
}

func (s *AnalyticsService) topProducts(ctx context.Context, day, vendorID string, limit int) ([]domain.ProductAnalytics, error) {
	results, err := s.rdb.ZRevRangeWithScores(ctx, stats.ProductPopularity(day, vendorID), 0, int64(limit-1)).Result()
	if err != nil || len(results) == 0 {
		return s.topProductsFromDB(ctx, day, vendorID, limit)
	}

	top := make([]domain.ProductAnalytics, 0, len(results))
	ids := make([]string, 0, len(results))
	for _, z := range results {
		id, _ := z.Member.(string)
		ids = append(ids, id)
		top = append(top, domain.ProductAnalytics{ProductID: id, Units: z.Score})
	}

	names, err := s.productNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range top {
		top[i].Name = names[top[i].ProductID]
	}
	return top, nil
}

func (s *AnalyticsService) productNames(ctx context.Context, ids []string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM products WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// topProductsFromDB unnests the order line items. Names come from the order
// snapshot, so deleted products still rank.
func (s *AnalyticsService) topProductsFromDB(ctx context.Context, day, vendorID string, limit int) ([]domain.ProductAnalytics, error) {
	query := `
		SELECT item->>'productId', MAX(item->>'name'), SUM((item->>'qty')::int) AS units
		FROM orders, jsonb_array_elements(items) AS item
		WHERE (created_at AT TIME ZONE 'UTC')::date = $1::date`
	args := []any{day, limit}
	if vendorID != stats.AllVendors {
		query += " AND vendor_id = $3"
		args = append(args, vendorID)
	}
	query += " GROUP BY 1 ORDER BY units DESC LIMIT $2"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []domain.ProductAnalytics{}
	for rows.Next() {
		var p domain.ProductAnalytics
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Units); err != nil {
			return nil, err
		}
		top = append(top, p)
	}
	return top, rows.Err()
}
