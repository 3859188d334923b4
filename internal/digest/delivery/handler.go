package delivery

import (
	"net/http"

	"newsly-backend/internal/digest/scheduler"
	"newsly-backend/internal/digest/usecase"

	"github.com/gin-gonic/gin"
)

// DigestHandler handles digest subscription and delivery HTTP requests
type DigestHandler struct {
	digestUsecase usecase.DigestUsecase
	scheduler     *scheduler.DigestScheduler
}

func NewDigestHandler(digestUsecase usecase.DigestUsecase, sched *scheduler.DigestScheduler) *DigestHandler {
	return &DigestHandler{
		digestUsecase: digestUsecase,
		scheduler:     sched,
	}
}

// SubscribeRequest represents the request body for subscribing to the digest
type SubscribeRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Timezone string `json:"timezone"`
}

// Subscribe adds or updates a digest subscriber
// POST /api/subscriptions
func (h *DigestHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.digestUsecase.Subscribe(req.Email, req.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.scheduler != nil {
		h.scheduler.Refresh()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Unsubscribe removes a digest subscriber
// DELETE /api/subscriptions/:email
func (h *DigestHandler) Unsubscribe(c *gin.Context) {
	email := c.Param("email")
	if err := h.digestUsecase.Unsubscribe(email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.scheduler != nil {
		h.scheduler.Refresh()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetSubscribers lists digest subscribers
// GET /api/subscriptions
func (h *DigestHandler) GetSubscribers(c *gin.Context) {
	subscribers, err := h.digestUsecase.Subscribers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subscribers, "total": len(subscribers)})
}

// Preview renders the digest without sending it
// GET /api/digest/preview
func (h *DigestHandler) Preview(c *gin.Context) {
	html, cards := h.digestUsecase.Preview(c.Request.Context())
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, gin.H{"items": cards})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// SendNow builds and sends the digest to all subscribers immediately
// POST /api/digest/now
func (h *DigestHandler) SendNow(c *gin.Context) {
	sent, err := h.digestUsecase.SendNow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "sent": sent})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sent": sent})
}
