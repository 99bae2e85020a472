package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	buckets     []PaymentBucket
	products    []ProductTotal
	bucketCalls int
}

func (f *fakeRepo) PaymentBuckets(context.Context, string, time.Time, time.Time) ([]PaymentBucket, error) {
	f.bucketCalls++
	return f.buckets, nil
}

func (f *fakeRepo) TopProducts(context.Context, string, time.Time, time.Time, int) ([]ProductTotal, error) {
	return f.products, nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestSalesAggregatesBuckets(t *testing.T) {
	repo := &fakeRepo{
		buckets: []PaymentBucket{
			{Day: day("2026-01-10"), Method: "CASH", Count: 2, Total: decimal.RequireFromString("30.00")},
			{Day: day("2026-01-10"), Method: "PIX", Count: 1, Total: decimal.RequireFromString("12.50")},
			{Day: day("2026-01-11"), Method: "CASH", Count: 1, Total: decimal.RequireFromString("7.50")},
		},
		products: []ProductTotal{{Name: "Burger", Quantity: 4, Total: decimal.RequireFromString("40.00")}},
	}
	svc := NewService(slog.Default(), repo, nil, time.Minute)

	report, err := svc.Sales(context.Background(), "owner-1", day("2026-01-10"), day("2026-01-12"))
	require.NoError(t, err)

	require.True(t, report.Total.Equal(decimal.RequireFromString("50.00")))
	require.Len(t, report.ByDay, 2)
	require.Equal(t, "2026-01-10", report.ByDay[0].Day)
	require.True(t, report.ByDay[0].Total.Equal(decimal.RequireFromString("42.50")))
	require.Len(t, report.ByMethod, 2)
	require.Equal(t, "CASH", report.ByMethod[0].Method)
	require.EqualValues(t, 3, report.ByMethod[0].Count)
	require.True(t, report.ByMethod[0].Total.Equal(decimal.RequireFromString("37.50")))
	require.Len(t, report.TopProducts, 1)
	require.NotEmpty(t, report.Formatted)
}

func TestSalesServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &fakeRepo{
		buckets: []PaymentBucket{
			{Day: day("2026-01-10"), Method: "CASH", Count: 1, Total: decimal.RequireFromString("10.00")},
		},
	}
	svc := NewService(slog.Default(), repo, cache, time.Minute)

	first, err := svc.Sales(context.Background(), "owner-1", day("2026-01-10"), day("2026-01-11"))
	require.NoError(t, err)
	second, err := svc.Sales(context.Background(), "owner-1", day("2026-01-10"), day("2026-01-11"))
	require.NoError(t, err)

	require.Equal(t, 1, repo.bucketCalls)
	require.True(t, first.Total.Equal(second.Total))
}

func TestSalesEmptyPeriod(t *testing.T) {
	svc := NewService(slog.Default(), &fakeRepo{}, nil, time.Minute)

	report, err := svc.Sales(context.Background(), "owner-1", day("2026-01-10"), day("2026-01-11"))
	require.NoError(t, err)
	require.True(t, report.Total.IsZero())
	require.Empty(t, report.ByDay)
	require.Empty(t, report.ByMethod)
}
