package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Cruzitooo/salsa-studio-api/internal/service"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
	"github.com/Cruzitooo/salsa-studio-api/pkg/response"
)

// ConceptHandler exposes the payment concept list.
type ConceptHandler struct {
	concepts *service.ConceptService
}

// NewConceptHandler constructs ConceptHandler.
func NewConceptHandler(concepts *service.ConceptService) *ConceptHandler {
	return &ConceptHandler{concepts: concepts}
}

type addConceptRequest struct {
	Name string `json:"name"`
}

// List godoc
// @Summary List payment concepts
// @Tags Concepts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /concepts [get]
func (h *ConceptHandler) List(c *gin.Context) {
	concepts, err := h.concepts.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, concepts, nil)
}

// Add godoc
// @Summary Add a payment concept
// @Tags Concepts
// @Accept json
// @Produce json
// @Param payload body addConceptRequest true "Concept name"
// @Success 201 {object} response.Envelope
// @Router /concepts [post]
func (h *ConceptHandler) Add(c *gin.Context) {
	var req addConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	concept, err := h.concepts.Add(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, concept)
}

// Remove godoc
// @Summary Remove a payment concept
// @Tags Concepts
// @Param name path string true "Concept name"
// @Success 204
// @Router /concepts/{name} [delete]
func (h *ConceptHandler) Remove(c *gin.Context) {
	if err := h.concepts.Remove(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
