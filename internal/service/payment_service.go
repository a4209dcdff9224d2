package service

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	"github.com/Cruzitooo/salsa-studio-api/pkg/config"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

// DefaultCashConcept is recorded when a cash payment carries no concept.
const DefaultCashConcept = "Pago en efectivo"

type paymentRepository interface {
	CardByMonth(ctx context.Context, year, month int) ([]models.CardPayment, error)
	CashByMonth(ctx context.Context, year, month int) ([]models.CashPayment, error)
	CardByStudent(ctx context.Context, studentID, studentName string) ([]models.CardPayment, error)
	CashByStudent(ctx context.Context, studentID, studentName string) ([]models.CashPayment, error)
	InsertCard(ctx context.Context, payment *models.CardPayment) error
	InsertCash(ctx context.Context, payment *models.CashPayment) error
}

type paymentStudentReader interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
}

type paylinkCreator interface {
	CreateLink(ctx context.Context, studentName, concept string, amount float64) (string, error)
}

// PaymentService merges card and cash records into one history, aggregates
// totals and issues payment links through the external checkout backend.
type PaymentService struct {
	payments  paymentRepository
	students  paymentStudentReader
	paylink   paylinkCreator
	billing   config.BillingConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs the service with its dependencies.
func NewPaymentService(payments paymentRepository, students paymentStudentReader, paylink paylinkCreator, billing config.BillingConfig, v *validator.Validate, logger *zap.Logger) *PaymentService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments:  payments,
		students:  students,
		paylink:   paylink,
		billing:   billing,
		validator: v,
		logger:    logger,
	}
}

// MergePayments tags both sources and orders them newest first. Records
// sharing a timestamp keep card before cash, and the relative order within
// each source is preserved.
func MergePayments(card []models.CardPayment, cash []models.CashPayment) []models.UnifiedPayment {
	merged := make([]models.UnifiedPayment, 0, len(card)+len(cash))
	for _, p := range card {
		merged = append(merged, p.Unified())
	}
	for _, p := range cash {
		merged = append(merged, p.Unified())
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

// FilterPayments keeps payments created in (year, month) and, unless the
// category is the "all" sentinel, only those tagged with that category.
func FilterPayments(payments []models.UnifiedPayment, year, month int, categoryName string) []models.UnifiedPayment {
	filtered := make([]models.UnifiedPayment, 0, len(payments))
	for _, p := range payments {
		if p.CreatedAt.Year() != year || int(p.CreatedAt.Month()) != month {
			continue
		}
		if categoryName != "" && categoryName != models.CategoryFilterAll {
			if p.CategoryName == nil || *p.CategoryName != categoryName {
				continue
			}
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// SumTotals adds up amounts per source. Non-finite amounts abort the sum so
// a corrupt record cannot poison an aggregate.
func SumTotals(payments []models.UnifiedPayment) (models.PaymentTotals, error) {
	var totals models.PaymentTotals
	for _, p := range payments {
		if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
			return models.PaymentTotals{}, appErrors.Clone(appErrors.ErrValidation, "payment amount is not a finite number")
		}
		switch p.Source {
		case models.PaymentSourceCash:
			totals.Cash += p.Amount
		default:
			totals.Card += p.Amount
		}
	}
	totals.Combined = totals.Card + totals.Cash
	return totals, nil
}

// StudentTotal sums the payments belonging to one student. Rows without a
// stable identifier are matched by the denormalised name.
func StudentTotal(payments []models.UnifiedPayment, studentID, studentName string) float64 {
	var total float64
	for _, p := range payments {
		if p.StudentID != nil {
			if *p.StudentID == studentID {
				total += p.Amount
			}
			continue
		}
		if p.StudentName == studentName {
			total += p.Amount
		}
	}
	return total
}

// CoverageCount converts a cumulative amount into whole classes covered.
func CoverageCount(totalPaid, pricePerClass float64) (int, error) {
	if math.IsNaN(totalPaid) || math.IsInf(totalPaid, 0) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "payment amount is not a finite number")
	}
	if pricePerClass <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "price per class must be positive")
	}
	return int(math.Floor(totalPaid / pricePerClass)), nil
}

// HasIncidence flags a payment made past the monthly deadline or below the
// acceptable amount.
func HasIncidence(p models.UnifiedPayment, lateDayThreshold int, minAmount float64) bool {
	return p.CreatedAt.Day() > lateDayThreshold || p.Amount < minAmount
}

// PaymentHistoryRequest selects one month of payments, optionally narrowed
// by category and source.
type PaymentHistoryRequest struct {
	Year     int
	Month    int
	Category string
	Source   string
}

// PaymentHistoryItem is one unified payment annotated with its incidence
// flag.
type PaymentHistoryItem struct {
	models.UnifiedPayment
	Incidence bool `json:"incidence"`
}

// PaymentHistoryResponse is a month of payments plus its totals.
type PaymentHistoryResponse struct {
	Items  []PaymentHistoryItem `json:"items"`
	Totals models.PaymentTotals `json:"totals"`
}

// History returns the merged, filtered month of payments newest first.
func (s *PaymentService) History(ctx context.Context, req PaymentHistoryRequest) (*PaymentHistoryResponse, error) {
	if err := ValidateYearMonth(req.Year, req.Month); err != nil {
		return nil, err
	}

	card, err := s.payments.CardByMonth(ctx, req.Year, req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list card payments")
	}
	cash, err := s.payments.CashByMonth(ctx, req.Year, req.Month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list cash payments")
	}

	merged := FilterPayments(MergePayments(card, cash), req.Year, req.Month, req.Category)
	if req.Source != "" {
		narrowed := merged[:0]
		for _, p := range merged {
			if string(p.Source) == req.Source {
				narrowed = append(narrowed, p)
			}
		}
		merged = narrowed
	}

	totals, err := SumTotals(merged)
	if err != nil {
		return nil, err
	}

	items := make([]PaymentHistoryItem, 0, len(merged))
	for _, p := range merged {
		items = append(items, PaymentHistoryItem{
			UnifiedPayment: p,
			Incidence:      HasIncidence(p, s.billing.LateDayThreshold, s.billing.MinAcceptableAmount),
		})
	}
	return &PaymentHistoryResponse{Items: items, Totals: totals}, nil
}

// MonthUnified returns the merged month without source narrowing, for the
// dashboard and export flows.
func (s *PaymentService) MonthUnified(ctx context.Context, year, month int) ([]models.UnifiedPayment, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	card, err := s.payments.CardByMonth(ctx, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list card payments")
	}
	cash, err := s.payments.CashByMonth(ctx, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list cash payments")
	}
	return MergePayments(card, cash), nil
}

// RecordCashRequest registers a cash payment handed over in person.
type RecordCashRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Concept   string `json:"concept"`
	Amount    string `json:"amount" validate:"required"`
}

// RecordCash stores a cash payment as already settled. Amounts accept a
// comma decimal separator since most entries come from Spanish keyboards.
func (s *PaymentService) RecordCash(ctx context.Context, req RecordCashRequest) (*models.CashPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cash payment payload")
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	student, err := s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		concept = DefaultCashConcept
	}

	payment := &models.CashPayment{
		ID:           uuid.NewString(),
		StudentID:    &student.ID,
		StudentName:  student.FullName,
		Concept:      concept,
		Amount:       amount,
		Status:       models.PaymentStatusPaid,
		CategoryName: &student.CategoryName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.payments.InsertCash(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save cash payment")
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", student.ID),
		zap.String("source", string(models.PaymentSourceCash)),
		zap.Float64("amount", amount))
	return payment, nil
}

// CreateLinkRequest asks the checkout backend for a payment link.
type CreateLinkRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Concept   string `json:"concept" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
}

// CreateLinkResponse carries the link plus the pending record it opened.
type CreateLinkResponse struct {
	URL     string             `json:"url"`
	Payment models.CardPayment `json:"payment"`
}

// CreatePaymentLink requests a checkout link and stores the payment as
// pending until the backend settles it.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment link payload")
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	student, err := s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	url, err := s.paylink.CreateLink(ctx, student.FullName, req.Concept, amount)
	if err != nil {
		return nil, err
	}

	payment := &models.CardPayment{
		ID:           uuid.NewString(),
		StudentID:    &student.ID,
		StudentName:  student.FullName,
		Concept:      req.Concept,
		Amount:       amount,
		Status:       models.PaymentStatusPending,
		CategoryName: &student.CategoryName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.payments.InsertCard(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save card payment")
	}

	s.logger.Info("payment link created",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", student.ID),
		zap.Float64("amount", amount))
	return &CreateLinkResponse{URL: url, Payment: *payment}, nil
}

// StudentBalance sums everything a student ever paid and converts it into
// classes covered at the configured price.
func (s *PaymentService) StudentBalance(ctx context.Context, studentID string) (*models.StudentBalance, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	card, err := s.payments.CardByStudent(ctx, student.ID, student.FullName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list card payments")
	}
	cash, err := s.payments.CashByStudent(ctx, student.ID, student.FullName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list cash payments")
	}

	merged := MergePayments(card, cash)
	totals, err := SumTotals(merged)
	if err != nil {
		return nil, err
	}
	covered, err := CoverageCount(totals.Combined, s.billing.PricePerClass)
	if err != nil {
		return nil, err
	}

	return &models.StudentBalance{
		StudentID:      student.ID,
		StudentName:    student.FullName,
		TotalPaid:      totals.Combined,
		ClassesCovered: covered,
	}, nil
}

func (s *PaymentService) loadStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load student")
	}
	return student, nil
}

func parseAmount(value string) (float64, error) {
	normalised := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	amount, err := strconv.ParseFloat(normalised, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "amount must be a number")
	}
	if amount <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "amount must be greater than zero")
	}
	return amount, nil
}
