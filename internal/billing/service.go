package billing

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/ilumina/storefront-backend/pkg/errors"
)

const monthLayout = "2006-01"

// MonthlyRevenue is one row of the billing report.
type MonthlyRevenue struct {
	Month        string          `json:"month"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Service builds revenue reports from completed orders.
type Service interface {
	Monthly(ctx context.Context) ([]MonthlyRevenue, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	return &service{repo: repo}, nil
}

// Monthly sums completed order totals per UTC calendar month, oldest month
// first. Months without completed orders are omitted.
func (s *service) Monthly(ctx context.Context) ([]MonthlyRevenue, error) {
	rows, err := s.repo.CompletedOrderTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load completed orders")
	}

	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		month := row.OrderDate.UTC().Format(monthLayout)
		sums[month] = sums[month].Add(row.TotalAmount)
	}

	out := make([]MonthlyRevenue, 0, len(sums))
	for month, total := range sums {
		out = append(out, MonthlyRevenue{Month: month, TotalRevenue: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}
