package handler

import (
	"github.com/gin-gonic/gin"

	"parsegate/internal/catalog"
	"parsegate/internal/detect"
)

// CaseHandler exposes the parse case catalog and detector registry.
type CaseHandler struct {
	catalog  *catalog.Catalog
	registry *detect.Registry
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(cat *catalog.Catalog, registry *detect.Registry) *CaseHandler {
	return &CaseHandler{catalog: cat, registry: registry}
}

// List handles GET /api/v1/cases
func (h *CaseHandler) List(c *gin.Context) {
	RespondOK(c, h.catalog.ListParseCases())
}

// Get handles GET /api/v1/cases/:name
func (h *CaseHandler) Get(c *gin.Context) {
	pc, err := h.catalog.ParseCase(c.Param("name"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, pc)
}

// Summary handles GET /api/v1/cases/:name/summary
func (h *CaseHandler) Summary(c *gin.Context) {
	summary, err := h.catalog.Summary(c.Param("name"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}

// Detectors handles GET /api/v1/detectors
func (h *CaseHandler) Detectors(c *gin.Context) {
	RespondOK(c, gin.H{"detectors": h.registry.Names()})
}
