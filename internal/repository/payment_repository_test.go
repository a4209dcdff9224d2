package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
)

func cardColumns() []string {
	return []string{"id", "student_id", "student_name", "concept", "amount", "status", "category_name", "provider_ref", "created_at"}
}

func cashColumns() []string {
	return []string{"id", "student_id", "student_name", "concept", "amount", "status", "category_name", "created_at"}
}

func TestPaymentRepositoryCardByMonth(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)
	rows := sqlmock.NewRows(cardColumns()).
		AddRow("pay-2", "student-1", "Ana", "Mensualidad", 45.0, "pagado", "Lunes Salsa", nil, time.Now()).
		AddRow("pay-1", nil, "Luis", "Clase Suelta", 15.0, "pendiente", nil, nil, time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM card_payments")).
		WithArgs("2025-09-01", "2025-10-01").
		WillReturnRows(rows)

	payments, err := repo.CardByMonth(context.Background(), 2025, 9)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.Equal(t, "pay-2", payments[0].ID)
	require.Nil(t, payments[1].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCashByStudentFallsBackToName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)
	rows := sqlmock.NewRows(cashColumns()).
		AddRow("pay-1", nil, "Ana García", "Pago en efectivo", 20.0, "pagado", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("student_id = $1 OR (student_id IS NULL AND student_name = $2)")).
		WithArgs("student-1", "Ana García").
		WillReturnRows(rows)

	payments, err := repo.CashByStudent(context.Background(), "student-1", "Ana García")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, "Ana García", payments[0].StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryInsertCash(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cash_payments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.CashPayment{
		StudentName: "Ana",
		Concept:     "Pago en efectivo",
		Amount:      20,
		Status:      models.PaymentStatusPaid,
	}
	require.NoError(t, repo.InsertCash(context.Background(), payment))
	require.NotEmpty(t, payment.ID)
	require.False(t, payment.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryInsertCardKeepsProvidedID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPaymentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO card_payments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.CardPayment{
		ID:          "pay-7",
		StudentName: "Ana",
		Concept:     "Mensualidad",
		Amount:      45,
		Status:      models.PaymentStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.InsertCard(context.Background(), payment))
	require.Equal(t, "pay-7", payment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
