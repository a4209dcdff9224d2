package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

type mockConceptRepo struct {
	concepts map[string]models.PaymentConcept
}

func newMockConceptRepo() *mockConceptRepo {
	return &mockConceptRepo{concepts: make(map[string]models.PaymentConcept)}
}

func (m *mockConceptRepo) List(ctx context.Context) ([]models.PaymentConcept, error) {
	out := make([]models.PaymentConcept, 0, len(m.concepts))
	for _, concept := range m.concepts {
		out = append(out, concept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *mockConceptRepo) Count(ctx context.Context) (int, error) {
	return len(m.concepts), nil
}

func (m *mockConceptRepo) Insert(ctx context.Context, concept models.PaymentConcept) error {
	m.concepts[concept.Name] = concept
	return nil
}

func (m *mockConceptRepo) Delete(ctx context.Context, name string) error {
	if _, ok := m.concepts[name]; !ok {
		return sql.ErrNoRows
	}
	delete(m.concepts, name)
	return nil
}

func TestConceptListSeedsDefaults(t *testing.T) {
	repo := newMockConceptRepo()
	svc := NewConceptService(repo, zap.NewNop())

	concepts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, concepts, len(defaultConcepts))
	assert.Equal(t, "Mensualidad", concepts[0].Name)

	// A second call must not reseed.
	again, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, len(defaultConcepts))
}

func TestConceptAddRejectsDuplicates(t *testing.T) {
	repo := newMockConceptRepo()
	svc := NewConceptService(repo, zap.NewNop())

	concept, err := svc.Add(context.Background(), "  Taller  ")
	require.NoError(t, err)
	assert.Equal(t, "Taller", concept.Name)

	_, err = svc.Add(context.Background(), "taller")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Add(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConceptRemove(t *testing.T) {
	repo := newMockConceptRepo()
	svc := NewConceptService(repo, zap.NewNop())

	_, err := svc.List(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), "Evento"))

	concepts, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, concepts, len(defaultConcepts)-1)
}
