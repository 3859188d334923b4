package main

import (
	"context"
	"log"

	api "newsly-backend/cmd/api"
	digestrepo "newsly-backend/internal/digest/repository"
	"newsly-backend/internal/digest/scheduler"
	digestusecase "newsly-backend/internal/digest/usecase"
	"newsly-backend/internal/newsletter/domain"
	newsletterrepo "newsly-backend/internal/newsletter/repository"
	newsletterusecase "newsly-backend/internal/newsletter/usecase"
	"newsly-backend/pkg/config"
	"newsly-backend/pkg/database"
	"newsly-backend/pkg/gmail"
	"newsly-backend/pkg/imap"
	"newsly-backend/pkg/toolcall"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Initialize mailbox backend
	var mailbox domain.Mailbox
	switch cfg.MailboxBackend {
	case "imap":
		mailbox = imap.NewService(cfg.IMAPAddr, cfg.SMTPAddr, cfg.IMAPUsername, cfg.IMAPPassword)
		log.Printf("Mailbox backend: IMAP (%s)", cfg.IMAPAddr)
	case "toolcall":
		client, err := toolcall.Dial(context.Background(), cfg.ToolCallWS)
		if err != nil {
			log.Fatal("Failed to connect to tool-call server: ", err)
		}
		if err := client.Connect("newsly-backend", "1.0.0"); err != nil {
			log.Fatal("Tool-call handshake failed: ", err)
		}
		mailbox = toolcall.NewMailbox(client)
		log.Printf("Mailbox backend: tool-call (%s)", cfg.ToolCallWS)
	default:
		mailbox = gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleTokenFile)
		log.Println("Mailbox backend: Gmail API")
	}

	// Initialize repositories (dependency injection)
	selectionRepo := newsletterrepo.NewFileSelectionRepository(cfg.SelectionPath)
	subscriberRepo := digestrepo.NewGormSubscriberRepository(db)

	// Initialize use cases
	newsletterUsecaseInstance := newsletterusecase.NewNewsletterUsecase(selectionRepo, mailbox, cfg)
	digestUsecaseInstance := digestusecase.NewDigestUsecase(newsletterUsecaseInstance, subscriberRepo, mailbox, cfg.DefaultTimezone)

	// Start the daily digest scheduler
	digestScheduler := scheduler.NewDigestScheduler(digestUsecaseInstance, cfg.DigestHour)
	digestScheduler.Start()
	defer digestScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(newsletterUsecaseInstance, digestUsecaseInstance, digestScheduler, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
