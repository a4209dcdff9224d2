package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	"github.com/Cruzitooo/salsa-studio-api/pkg/config"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

type mockCategoryReader struct {
	categories map[string]models.Category
	err        error
}

func (m *mockCategoryReader) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	if category, ok := m.categories[id]; ok {
		return &category, nil
	}
	return nil, sql.ErrNoRows
}

func weekdayPtr(d time.Weekday) *int {
	v := int(d)
	return &v
}

func newScheduleService(categories map[string]models.Category, cfg config.ScheduleConfig) *ScheduleService {
	return NewScheduleService(&mockCategoryReader{categories: categories}, cfg, zap.NewNop())
}

func TestSessionDatesLeapFebruary(t *testing.T) {
	svc := newScheduleService(map[string]models.Category{
		"cat-1": {ID: "cat-1", Name: "Jueves Salsa", Weekday: weekdayPtr(time.Thursday)},
	}, config.ScheduleConfig{UnknownWeekdayPolicy: config.UnknownWeekdayEmpty})

	dates, err := svc.SessionDates(context.Background(), "cat-1", 2024, 2)
	require.NoError(t, err)
	require.Len(t, dates, 5)
	assert.Equal(t, 1, dates[0].Day())
	assert.Equal(t, 29, dates[4].Day())
	for _, date := range dates {
		assert.Equal(t, time.Thursday, date.Weekday())
		assert.Equal(t, time.February, date.Month())
	}
}

func TestSessionDatesNonLeapFebruary(t *testing.T) {
	svc := newScheduleService(map[string]models.Category{
		"cat-1": {ID: "cat-1", Name: "Miércoles Bachata", Weekday: weekdayPtr(time.Wednesday)},
	}, config.ScheduleConfig{UnknownWeekdayPolicy: config.UnknownWeekdayEmpty})

	dates, err := svc.SessionDates(context.Background(), "cat-1", 2023, 2)
	require.NoError(t, err)
	require.Len(t, dates, 4)
	assert.Equal(t, 22, dates[3].Day())
}

func TestSessionDatesAscending(t *testing.T) {
	svc := newScheduleService(map[string]models.Category{
		"cat-1": {ID: "cat-1", Name: "Lunes Salsa", Weekday: weekdayPtr(time.Monday)},
	}, config.ScheduleConfig{UnknownWeekdayPolicy: config.UnknownWeekdayEmpty})

	dates, err := svc.SessionDates(context.Background(), "cat-1", 2025, 9)
	require.NoError(t, err)
	require.NotEmpty(t, dates)
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
	}
}

func TestSessionDatesInvalidCalendar(t *testing.T) {
	svc := newScheduleService(map[string]models.Category{
		"cat-1": {ID: "cat-1", Name: "Lunes Salsa", Weekday: weekdayPtr(time.Monday)},
	}, config.ScheduleConfig{UnknownWeekdayPolicy: config.UnknownWeekdayEmpty})

	for _, month := range []int{0, 13, -1} {
		_, err := svc.SessionDates(context.Background(), "cat-1", 2025, month)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidCalendar.Code, appErrors.FromError(err).Code)
	}

	_, err := svc.SessionDates(context.Background(), "cat-1", 1800, 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCalendar.Code, appErrors.FromError(err).Code)
}

func TestSessionDatesUnknownWeekdayEmptyPolicy(t *testing.T) {
	svc := newScheduleService(map[string]models.Category{
		"cat-1": {ID: "cat-1", Name: "Bachata Avanzado"},
	}, config.ScheduleConfig{UnknownWeekdayPolicy: config.UnknownWeekdayEmpty})

	dates, err := svc.SessionDates(context.Background(), "cat-1", 2025, 9)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestSessionDatesUnknownWeekdayDefaultPolicy(t *testing.T) {
	svc := newScheduleService(map[string]models.Category{
		"cat-1": {ID: "cat-1", Name: "Bachata Avanzado"},
	}, config.ScheduleConfig{
		UnknownWeekdayPolicy: config.UnknownWeekdayDefault,
		DefaultWeekday:       int(time.Sunday),
	})

	dates, err := svc.SessionDates(context.Background(), "cat-1", 2025, 9)
	require.NoError(t, err)
	require.NotEmpty(t, dates)
	for _, date := range dates {
		assert.Equal(t, time.Sunday, date.Weekday())
	}
}

func TestSessionDatesLegacyNameFallback(t *testing.T) {
	// Rows created before the weekday column still resolve from the name.
	svc := newScheduleService(map[string]models.Category{
		"cat-1": {ID: "cat-1", Name: "Viernes Social"},
	}, config.ScheduleConfig{UnknownWeekdayPolicy: config.UnknownWeekdayEmpty})

	dates, err := svc.SessionDates(context.Background(), "cat-1", 2025, 9)
	require.NoError(t, err)
	require.NotEmpty(t, dates)
	for _, date := range dates {
		assert.Equal(t, time.Friday, date.Weekday())
	}
}

func TestSessionDatesCategoryNotFound(t *testing.T) {
	svc := newScheduleService(map[string]models.Category{}, config.ScheduleConfig{})

	_, err := svc.SessionDates(context.Background(), "missing", 2025, 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
