package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	"github.com/Cruzitooo/salsa-studio-api/pkg/config"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

type mockPaymentRepo struct {
	card []models.CardPayment
	cash []models.CashPayment
	err  error
}

func (m *mockPaymentRepo) CardByMonth(ctx context.Context, year, month int) ([]models.CardPayment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.card, nil
}

func (m *mockPaymentRepo) CashByMonth(ctx context.Context, year, month int) ([]models.CashPayment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cash, nil
}

func (m *mockPaymentRepo) CardByStudent(ctx context.Context, studentID, studentName string) ([]models.CardPayment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.CardPayment
	for _, p := range m.card {
		if (p.StudentID != nil && *p.StudentID == studentID) || (p.StudentID == nil && p.StudentName == studentName) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) CashByStudent(ctx context.Context, studentID, studentName string) ([]models.CashPayment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.CashPayment
	for _, p := range m.cash {
		if (p.StudentID != nil && *p.StudentID == studentID) || (p.StudentID == nil && p.StudentName == studentName) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) InsertCard(ctx context.Context, payment *models.CardPayment) error {
	if m.err != nil {
		return m.err
	}
	m.card = append(m.card, *payment)
	return nil
}

func (m *mockPaymentRepo) InsertCash(ctx context.Context, payment *models.CashPayment) error {
	if m.err != nil {
		return m.err
	}
	m.cash = append(m.cash, *payment)
	return nil
}

type mockStudentReader struct {
	students map[string]models.Student
}

func (m *mockStudentReader) GetByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.students[id]; ok {
		return &student, nil
	}
	return nil, sql.ErrNoRows
}

type mockPaylink struct {
	url string
	err error
}

func (m *mockPaylink) CreateLink(ctx context.Context, studentName, concept string, amount float64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

func testBilling() config.BillingConfig {
	return config.BillingConfig{
		PricePerClass:       15,
		LateDayThreshold:    5,
		MinAcceptableAmount: 30,
	}
}

func at(day int) time.Time {
	return time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC)
}

func TestMergePaymentsOrderAndTieBreak(t *testing.T) {
	card := []models.CardPayment{
		{ID: "cardA", Amount: 40, CreatedAt: at(5)},
		{ID: "cardB", Amount: 20, CreatedAt: at(1)},
	}
	cash := []models.CashPayment{
		{ID: "cashX", Amount: 20, CreatedAt: at(5)},
	}

	merged := MergePayments(card, cash)

	require.Len(t, merged, 3)
	assert.Equal(t, "cardA", merged[0].ID)
	assert.Equal(t, "cashX", merged[1].ID)
	assert.Equal(t, "cardB", merged[2].ID)
	assert.Equal(t, models.PaymentSourceCard, merged[0].Source)
	assert.Equal(t, models.PaymentSourceCash, merged[1].Source)
}

func TestMergePaymentsPreservesSourceOrder(t *testing.T) {
	same := at(10)
	card := []models.CardPayment{
		{ID: "card1", CreatedAt: same},
		{ID: "card2", CreatedAt: same},
	}
	cash := []models.CashPayment{
		{ID: "cash1", CreatedAt: same},
		{ID: "cash2", CreatedAt: same},
	}

	merged := MergePayments(card, cash)

	require.Len(t, merged, 4)
	assert.Equal(t, []string{"card1", "card2", "cash1", "cash2"},
		[]string{merged[0].ID, merged[1].ID, merged[2].ID, merged[3].ID})
}

func TestFilterPayments(t *testing.T) {
	salsa := "Lunes Salsa"
	bachata := "Martes Bachata"
	payments := []models.UnifiedPayment{
		{ID: "p1", CategoryName: &salsa, CreatedAt: at(3)},
		{ID: "p2", CategoryName: &bachata, CreatedAt: at(4)},
		{ID: "p3", CategoryName: &salsa, CreatedAt: time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "p4", CreatedAt: at(6)},
	}

	january := FilterPayments(payments, 2025, 1, models.CategoryFilterAll)
	require.Len(t, january, 3)

	onlySalsa := FilterPayments(payments, 2025, 1, salsa)
	require.Len(t, onlySalsa, 1)
	assert.Equal(t, "p1", onlySalsa[0].ID)
}

func TestSumTotals(t *testing.T) {
	payments := []models.UnifiedPayment{
		{Source: models.PaymentSourceCard, Amount: 40},
		{Source: models.PaymentSourceCard, Amount: 20},
		{Source: models.PaymentSourceCash, Amount: 20},
	}

	totals, err := SumTotals(payments)
	require.NoError(t, err)
	assert.Equal(t, 60.0, totals.Card)
	assert.Equal(t, 20.0, totals.Cash)
	assert.Equal(t, 80.0, totals.Combined)
}

func TestSumTotalsRejectsNonFinite(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := SumTotals([]models.UnifiedPayment{{Amount: amount}})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestStudentTotal(t *testing.T) {
	id := "student-1"
	payments := []models.UnifiedPayment{
		{StudentID: &id, StudentName: "Ana", Amount: 45},
		{StudentName: "Ana", Amount: 15},
		{StudentName: "Luis", Amount: 30},
	}

	assert.Equal(t, 60.0, StudentTotal(payments, "student-1", "Ana"))
	assert.Equal(t, 30.0, StudentTotal(payments, "student-2", "Luis"))
}

func TestCoverageCount(t *testing.T) {
	covered, err := CoverageCount(135, 15)
	require.NoError(t, err)
	assert.Equal(t, 9, covered)

	covered, err = CoverageCount(10, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, covered)

	covered, err = CoverageCount(44.9, 15)
	require.NoError(t, err)
	assert.Equal(t, 2, covered)

	_, err = CoverageCount(100, 0)
	require.Error(t, err)

	_, err = CoverageCount(math.NaN(), 15)
	require.Error(t, err)
}

func TestHasIncidence(t *testing.T) {
	onTime := models.UnifiedPayment{Amount: 45, CreatedAt: at(5)}
	assert.False(t, HasIncidence(onTime, 5, 30))

	late := models.UnifiedPayment{Amount: 45, CreatedAt: at(6)}
	assert.True(t, HasIncidence(late, 5, 30))

	short := models.UnifiedPayment{Amount: 25, CreatedAt: at(2)}
	assert.True(t, HasIncidence(short, 5, 30))

	lateAndShort := models.UnifiedPayment{Amount: 10, CreatedAt: at(28)}
	assert.True(t, HasIncidence(lateAndShort, 5, 30))
}

func TestHistoryAnnotatesIncidences(t *testing.T) {
	repo := &mockPaymentRepo{
		card: []models.CardPayment{{ID: "ok", Amount: 45, Status: models.PaymentStatusPaid, CreatedAt: at(2)}},
		cash: []models.CashPayment{{ID: "late", Amount: 45, Status: models.PaymentStatusPaid, CreatedAt: at(9)}},
	}
	svc := NewPaymentService(repo, &mockStudentReader{}, &mockPaylink{}, testBilling(), nil, zap.NewNop())

	history, err := svc.History(context.Background(), PaymentHistoryRequest{Year: 2025, Month: 1, Category: models.CategoryFilterAll})
	require.NoError(t, err)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "late", history.Items[0].ID)
	assert.True(t, history.Items[0].Incidence)
	assert.False(t, history.Items[1].Incidence)
	assert.Equal(t, 90.0, history.Totals.Combined)
}

func TestHistorySourceFilter(t *testing.T) {
	repo := &mockPaymentRepo{
		card: []models.CardPayment{{ID: "c1", Amount: 45, CreatedAt: at(2)}},
		cash: []models.CashPayment{{ID: "e1", Amount: 20, CreatedAt: at(3)}},
	}
	svc := NewPaymentService(repo, &mockStudentReader{}, &mockPaylink{}, testBilling(), nil, zap.NewNop())

	history, err := svc.History(context.Background(), PaymentHistoryRequest{Year: 2025, Month: 1, Source: "cash"})
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "e1", history.Items[0].ID)
	assert.Equal(t, 20.0, history.Totals.Combined)
}

func TestHistoryPersistenceErrorSurfaces(t *testing.T) {
	repo := &mockPaymentRepo{err: errors.New("broken pipe")}
	svc := NewPaymentService(repo, &mockStudentReader{}, &mockPaylink{}, testBilling(), nil, zap.NewNop())

	_, err := svc.History(context.Background(), PaymentHistoryRequest{Year: 2025, Month: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
}

func TestRecordCash(t *testing.T) {
	repo := &mockPaymentRepo{}
	students := &mockStudentReader{students: map[string]models.Student{
		"student-1": {ID: "student-1", FullName: "Ana García", CategoryName: "Lunes Salsa"},
	}}
	svc := NewPaymentService(repo, students, &mockPaylink{}, testBilling(), nil, zap.NewNop())

	payment, err := svc.RecordCash(context.Background(), RecordCashRequest{
		StudentID: "student-1",
		Amount:    "25,50",
	})

	require.NoError(t, err)
	assert.Equal(t, 25.50, payment.Amount)
	assert.Equal(t, DefaultCashConcept, payment.Concept)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.StudentID)
	assert.Equal(t, "student-1", *payment.StudentID)
	require.NotNil(t, payment.CategoryName)
	assert.Equal(t, "Lunes Salsa", *payment.CategoryName)
	require.Len(t, repo.cash, 1)
}

func TestRecordCashRejectsBadAmounts(t *testing.T) {
	students := &mockStudentReader{students: map[string]models.Student{
		"student-1": {ID: "student-1", FullName: "Ana"},
	}}
	svc := NewPaymentService(&mockPaymentRepo{}, students, &mockPaylink{}, testBilling(), nil, zap.NewNop())

	for _, amount := range []string{"", "abc", "0", "-5", "1,2,3"} {
		_, err := svc.RecordCash(context.Background(), RecordCashRequest{StudentID: "student-1", Amount: amount})
		require.Error(t, err, amount)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, amount)
	}
}

func TestCreatePaymentLink(t *testing.T) {
	repo := &mockPaymentRepo{}
	students := &mockStudentReader{students: map[string]models.Student{
		"student-1": {ID: "student-1", FullName: "Ana García", CategoryName: "Lunes Salsa"},
	}}
	svc := NewPaymentService(repo, students, &mockPaylink{url: "https://pay.example/abc"}, testBilling(), nil, zap.NewNop())

	resp, err := svc.CreatePaymentLink(context.Background(), CreateLinkRequest{
		StudentID: "student-1",
		Concept:   "Mensualidad",
		Amount:    "45",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", resp.URL)
	assert.Equal(t, models.PaymentStatusPending, resp.Payment.Status)
	require.Len(t, repo.card, 1)
	assert.Equal(t, "Mensualidad", repo.card[0].Concept)
}

func TestCreatePaymentLinkGatewayFailureStoresNothing(t *testing.T) {
	repo := &mockPaymentRepo{}
	students := &mockStudentReader{students: map[string]models.Student{
		"student-1": {ID: "student-1", FullName: "Ana"},
	}}
	svc := NewPaymentService(repo, students, &mockPaylink{err: appErrors.ErrGateway}, testBilling(), nil, zap.NewNop())

	_, err := svc.CreatePaymentLink(context.Background(), CreateLinkRequest{
		StudentID: "student-1",
		Concept:   "Mensualidad",
		Amount:    "45",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGateway.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.card)
}

func TestStudentBalance(t *testing.T) {
	id := "student-1"
	repo := &mockPaymentRepo{
		card: []models.CardPayment{{StudentID: &id, Amount: 90, CreatedAt: at(2)}},
		cash: []models.CashPayment{{StudentName: "Ana García", Amount: 45, CreatedAt: at(8)}},
	}
	students := &mockStudentReader{students: map[string]models.Student{
		id: {ID: id, FullName: "Ana García", CategoryName: "Lunes Salsa"},
	}}
	svc := NewPaymentService(repo, students, &mockPaylink{}, testBilling(), nil, zap.NewNop())

	balance, err := svc.StudentBalance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 135.0, balance.TotalPaid)
	assert.Equal(t, 9, balance.ClassesCovered)
}

func TestStudentBalanceUnknownStudent(t *testing.T) {
	svc := NewPaymentService(&mockPaymentRepo{}, &mockStudentReader{}, &mockPaylink{}, testBilling(), nil, zap.NewNop())

	_, err := svc.StudentBalance(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
