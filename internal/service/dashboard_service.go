package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	"github.com/Cruzitooo/salsa-studio-api/pkg/config"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type dashboardCategoryLister interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error)
}

type monthPaymentsLoader interface {
	MonthUnified(ctx context.Context, year, month int) ([]models.UnifiedPayment, error)
}

// DashboardPaymentsResponse is the month-at-a-glance payments board: one
// card per category plus the totals split by source.
type DashboardPaymentsResponse struct {
	Year       int                             `json:"year"`
	Month      int                             `json:"month"`
	Categories []models.CategoryPaymentSummary `json:"categories"`
	Totals     models.PaymentTotals            `json:"totals"`
	Incidences int                             `json:"incidences"`
}

// DashboardService aggregates the payments overview and caches it in redis.
// The cache is best effort; redis being down degrades to recomputing.
type DashboardService struct {
	cache      dashboardCache
	categories dashboardCategoryLister
	students   rosterStudentReader
	payments   monthPaymentsLoader
	billing    config.BillingConfig
	cfg        config.DashboardConfig
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewDashboardService constructs the service. The cache may be nil when
// redis is not configured.
func NewDashboardService(cache dashboardCache, categories dashboardCategoryLister, students rosterStudentReader, payments monthPaymentsLoader, billing config.BillingConfig, cfg config.DashboardConfig, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		cache:      cache,
		categories: categories,
		students:   students,
		payments:   payments,
		billing:    billing,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// PaymentsOverview returns the cached overview for (year, month), computing
// and storing it on a miss. The second return reports a cache hit.
func (s *DashboardService) PaymentsOverview(ctx context.Context, year, month int) (*DashboardPaymentsResponse, bool, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return nil, false, err
	}

	key := fmt.Sprintf("dashboard:payments:%d-%02d", year, month)
	if s.cacheEnabled() {
		var cached DashboardPaymentsResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	overview, err := s.compute(ctx, year, month)
	if err != nil {
		return nil, false, err
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, overview, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return overview, false, nil
}

// Invalidate drops every cached overview. Called after payment writes.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:payments:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) cacheEnabled() bool {
	return s.cfg.Enabled && s.cache != nil
}

func (s *DashboardService) compute(ctx context.Context, year, month int) (*DashboardPaymentsResponse, error) {
	categories, _, err := s.categories.List(ctx, models.CategoryFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list categories")
	}
	payments, err := s.payments.MonthUnified(ctx, year, month)
	if err != nil {
		return nil, err
	}

	totals, err := SumTotals(payments)
	if err != nil {
		return nil, err
	}

	incidences := 0
	for _, p := range payments {
		if HasIncidence(p, s.billing.LateDayThreshold, s.billing.MinAcceptableAmount) {
			incidences++
		}
	}

	cards := make([]models.CategoryPaymentSummary, 0, len(categories))
	for _, category := range categories {
		students, err := s.students.ListActiveByCategory(ctx, category.Name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list students")
		}

		scoped := FilterPayments(payments, year, month, category.Name)
		paid := make(map[string]struct{}, len(scoped))
		var amount float64
		for _, p := range scoped {
			amount += p.Amount
			if p.Status != models.PaymentStatusPaid {
				continue
			}
			if p.StudentID != nil {
				paid[*p.StudentID] = struct{}{}
			} else {
				paid["name:"+p.StudentName] = struct{}{}
			}
		}

		cards = append(cards, models.CategoryPaymentSummary{
			CategoryName:  category.Name,
			PaidStudents:  len(paid),
			TotalStudents: len(students),
			Amount:        amount,
		})
	}

	return &DashboardPaymentsResponse{
		Year:       year,
		Month:      month,
		Categories: cards,
		Totals:     totals,
		Incidences: incidences,
	}, nil
}
