package api

import (
	"log"

	digestusecase "newsly-backend/internal/digest/usecase"
	newsletterusecase "newsly-backend/internal/newsletter/usecase"

	"newsly-backend/internal/digest/scheduler"
	"newsly-backend/pkg/ai"
	"newsly-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	newsletterUsecase newsletterusecase.NewsletterUsecase
	digestUsecase     digestusecase.DigestUsecase
	scheduler         *scheduler.DigestScheduler
	config            *config.Config
}

func NewHandler(newsletterUc newsletterusecase.NewsletterUsecase, digestUc digestusecase.DigestUsecase, sched *scheduler.DigestScheduler, cfg *config.Config) *Handler {
	// Initialize the summarization service; without it every card degrades
	// to the heuristic extractor, which is a valid (if plainer) digest.
	aiService, err := ai.NewOpenAIService(ai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		Lang:        cfg.SummaryLang,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service, digests will use the fallback extractor: %v", err)
	} else {
		newsletterUc.SetAIService(aiService)
		log.Printf("AI service initialized with model: %s", cfg.OpenAIModel)
	}

	return &Handler{
		newsletterUsecase: newsletterUc,
		digestUsecase:     digestUc,
		scheduler:         sched,
		config:            cfg,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.newsletterUsecase, h.digestUsecase, h.scheduler)

	return r.Run(addr)
}
