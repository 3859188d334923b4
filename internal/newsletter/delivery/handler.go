package delivery

import (
	"net/http"

	"newsly-backend/internal/newsletter/domain"
	"newsly-backend/internal/newsletter/dto"
	"newsly-backend/internal/newsletter/usecase"

	"github.com/gin-gonic/gin"
)

// NewsletterHandler handles newsletter curation and digest HTTP requests
type NewsletterHandler struct {
	newsletterUsecase usecase.NewsletterUsecase
}

func NewNewsletterHandler(newsletterUsecase usecase.NewsletterUsecase) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterUsecase: newsletterUsecase,
	}
}

// Scan discovers candidate senders merged with the stored selection
// POST /api/newsletters/scan
func (h *NewsletterHandler) Scan(c *gin.Context) {
	entries, err := h.newsletterUsecase.ScanCandidates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []domain.SelectionEntry{}
	}
	c.JSON(http.StatusOK, dto.ScanResponse{Items: entries})
}

// SaveSelection replaces the stored selection
// POST /api/newsletters/selection
func (h *NewsletterHandler) SaveSelection(c *gin.Context) {
	var req dto.SaveSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.newsletterUsecase.SaveSelection(req.Selected); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(req.Selected)})
}

// GetFeatured builds and returns the digest cards
// GET /api/newsletters/featured?fast=0|1
func (h *NewsletterHandler) GetFeatured(c *gin.Context) {
	fast := c.DefaultQuery("fast", "0") == "1"

	cards := h.newsletterUsecase.BuildDigest(c.Request.Context(), fast)
	c.JSON(http.StatusOK, dto.FeaturedResponse{Items: cards})
}

// Debug exposes the stored selection for troubleshooting
// GET /api/newsletters/debug
func (h *NewsletterHandler) Debug(c *gin.Context) {
	entries, err := h.newsletterUsecase.Selection()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	selectedCount := 0
	for _, e := range entries {
		if e.Selected {
			selectedCount++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"selection":      entries,
		"total":          len(entries),
		"selected_count": selectedCount,
	})
}
