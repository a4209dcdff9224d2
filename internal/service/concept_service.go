package service

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

// defaultConcepts seed an empty installation so the payment forms have
// something to offer from day one.
var defaultConcepts = []string{
	"Mensualidad",
	"Minimo Obligatorio",
	"Clase Suelta",
	"Privada",
	"Intensivo",
	"Evento",
}

type conceptRepository interface {
	List(ctx context.Context) ([]models.PaymentConcept, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, concept models.PaymentConcept) error
	Delete(ctx context.Context, name string) error
}

// ConceptService manages the user-editable list of payment concepts.
type ConceptService struct {
	concepts conceptRepository
	logger   *zap.Logger
}

// NewConceptService constructs the service.
func NewConceptService(concepts conceptRepository, logger *zap.Logger) *ConceptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConceptService{concepts: concepts, logger: logger}
}

// List returns the concepts, seeding the defaults when the table is empty.
func (s *ConceptService) List(ctx context.Context) ([]models.PaymentConcept, error) {
	count, err := s.concepts.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to count concepts")
	}
	if count == 0 {
		if err := s.seed(ctx); err != nil {
			return nil, err
		}
	}

	concepts, err := s.concepts.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list concepts")
	}
	return concepts, nil
}

// Add appends a new concept to the end of the list.
func (s *ConceptService) Add(ctx context.Context, name string) (*models.PaymentConcept, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "concept name is required")
	}

	existing, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, concept := range existing {
		if strings.EqualFold(concept.Name, name) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "concept already exists")
		}
	}

	concept := models.PaymentConcept{Name: name, Position: len(existing)}
	if err := s.concepts.Insert(ctx, concept); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save concept")
	}
	return &concept, nil
}

// Remove deletes a concept by name. Payments already tagged with it keep
// their stored concept string.
func (s *ConceptService) Remove(ctx context.Context, name string) error {
	if err := s.concepts.Delete(ctx, strings.TrimSpace(name)); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "concept not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete concept")
	}
	return nil
}

func (s *ConceptService) seed(ctx context.Context) error {
	for position, name := range defaultConcepts {
		if err := s.concepts.Insert(ctx, models.PaymentConcept{Name: name, Position: position}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to seed concepts")
		}
	}
	s.logger.Info("seeded default payment concepts", zap.Int("count", len(defaultConcepts)))
	return nil
}
