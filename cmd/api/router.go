package api

import (
	"net/http"

	digestdelivery "newsly-backend/internal/digest/delivery"
	"newsly-backend/internal/digest/scheduler"
	digestusecase "newsly-backend/internal/digest/usecase"
	newsletterdelivery "newsly-backend/internal/newsletter/delivery"
	newsletterusecase "newsly-backend/internal/newsletter/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, newsletterUsecase newsletterusecase.NewsletterUsecase, digestUsecase digestusecase.DigestUsecase, sched *scheduler.DigestScheduler) {
	newsletterHandler := newsletterdelivery.NewNewsletterHandler(newsletterUsecase)
	digestHandler := digestdelivery.NewDigestHandler(digestUsecase, sched)

	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Newsletter curation and digest feed
		newsletters := api.Group("/newsletters")
		{
			newsletters.POST("/scan", newsletterHandler.Scan)
			newsletters.POST("/selection", newsletterHandler.SaveSelection)
			newsletters.GET("/featured", newsletterHandler.GetFeatured)
			newsletters.GET("/debug", newsletterHandler.Debug)
		}

		// Digest subscriptions and delivery
		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.GET("", digestHandler.GetSubscribers)
			subscriptions.POST("", digestHandler.Subscribe)
			subscriptions.DELETE("/:email", digestHandler.Unsubscribe)
		}

		digest := api.Group("/digest")
		{
			digest.GET("/preview", digestHandler.Preview)
			digest.POST("/now", digestHandler.SendNow)
		}
	}
}
