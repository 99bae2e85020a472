package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const topProductsLimit = 10

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	PaymentBuckets(ctx context.Context, ownerID string, from, to time.Time) ([]PaymentBucket, error)
	TopProducts(ctx context.Context, ownerID string, from, to time.Time, limit int) ([]ProductTotal, error)
}

// Service assembles sales reports with a Redis cache in front of the
// aggregate queries. Concurrent builds of the same report are collapsed.
type Service struct {
	logger  *slog.Logger
	repo    RepositoryPort
	cache   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	printer *message.Printer
}

// NewService builds Service. cache may be nil, which disables caching.
func NewService(logger *slog.Logger, repo RepositoryPort, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// Sales returns the sales summary for [from, to).
func (s *Service) Sales(ctx context.Context, ownerID string, from, to time.Time) (SalesReport, error) {
	key := fmt.Sprintf("reports:sales:%s:%s:%s", ownerID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if report, ok := s.cached(ctx, key); ok {
		return report, nil
	}

	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		report, err := s.build(ctx, ownerID, from, to)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, report)
		return report, nil
	})
	select {
	case <-ctx.Done():
		return SalesReport{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return SalesReport{}, res.Err
		}
		return res.Val.(SalesReport), nil
	}
}

func (s *Service) build(ctx context.Context, ownerID string, from, to time.Time) (SalesReport, error) {
	buckets, err := s.repo.PaymentBuckets(ctx, ownerID, from, to)
	if err != nil {
		return SalesReport{}, err
	}
	products, err := s.repo.TopProducts(ctx, ownerID, from, to, topProductsLimit)
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{From: from, To: to, Total: decimal.Zero}

	byDay := make(map[string]decimal.Decimal)
	byMethod := make(map[string]*MethodTotal)
	for _, b := range buckets {
		day := b.Day.Format("2006-01-02")
		byDay[day] = byDay[day].Add(b.Total)
		mt := byMethod[b.Method]
		if mt == nil {
			mt = &MethodTotal{Method: b.Method, Total: decimal.Zero}
			byMethod[b.Method] = mt
		}
		mt.Count += b.Count
		mt.Total = mt.Total.Add(b.Total)
		report.Total = report.Total.Add(b.Total)
	}

	for day, total := range byDay {
		report.ByDay = append(report.ByDay, DayTotal{Day: day, Total: total, Formatted: s.formatBRL(total)})
	}
	sort.Slice(report.ByDay, func(i, j int) bool { return report.ByDay[i].Day < report.ByDay[j].Day })

	for _, mt := range byMethod {
		mt.Formatted = s.formatBRL(mt.Total)
		report.ByMethod = append(report.ByMethod, *mt)
	}
	sort.Slice(report.ByMethod, func(i, j int) bool { return report.ByMethod[i].Method < report.ByMethod[j].Method })

	for i := range products {
		products[i].Formatted = s.formatBRL(products[i].Total)
	}
	report.TopProducts = products
	report.Formatted = s.formatBRL(report.Total)
	return report, nil
}

func (s *Service) formatBRL(v decimal.Decimal) string {
	return s.printer.Sprint(currency.Symbol(currency.BRL.Amount(v.InexactFloat64())))
}

func (s *Service) cached(ctx context.Context, key string) (SalesReport, bool) {
	if s.cache == nil {
		return SalesReport{}, false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read", slog.Any("error", err))
		}
		return SalesReport{}, false
	}
	var report SalesReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return SalesReport{}, false
	}
	return report, true
}

func (s *Service) store(ctx context.Context, key string, report SalesReport) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("report cache write", slog.Any("error", err))
	}
}
