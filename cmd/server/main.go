package main

import (
	"context"
	"fmt"
	"log"

	"parsegate/internal/catalog"
	"parsegate/internal/config"
	"parsegate/internal/detect"
	xmldetect "parsegate/internal/detect/xml"
	"parsegate/internal/email/noop"
	"parsegate/internal/email/ses"
	"parsegate/internal/handler"
	"parsegate/internal/ingest"
	"parsegate/internal/port"
	"parsegate/internal/repository/postgres"
	"parsegate/internal/router"
	"parsegate/internal/service"
	s3storage "parsegate/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	parseCaseRepo := postgres.NewParseCaseRepo(db)
	recordRepo := postgres.NewDetectionRecordRepo(db)
	queueRepo := postgres.NewApprovalQueueRepo(db)
	reviewerRepo := postgres.NewReviewerRepo(db)

	// Load the parse case catalog from the seeded definitions
	cases, err := parseCaseRepo.ListWithAttributes(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load parse cases: %w", err)
	}
	cat, err := catalog.New(cases)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}
	log.Printf("Loaded %d parse cases", len(cat.ListParseCases()))

	// Register detectors and build the engine
	registry := detect.NewRegistry()
	registry.Register(xmldetect.NewDetector(cat))

	engine, err := detect.NewEngine(registry, cat, cfg.Detection)
	if err != nil {
		return fmt.Errorf("failed to build detection engine: %w", err)
	}

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var sender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ConsoleURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noop.NewNoopSender()
	}

	// Initialize downstream ingestor
	var ingestor port.Ingestor
	switch cfg.Ingest.Provider {
	case "http":
		ingestor, err = ingest.NewHTTPIngestor(cfg.Ingest)
		if err != nil {
			return fmt.Errorf("failed to initialize ingestor: %w", err)
		}
	default:
		ingestor = ingest.NewNoopIngestor()
	}

	// Initialize services
	authSvc := service.NewAuthService(reviewerRepo, cfg.JWT)
	detectionSvc := service.NewDetectionService(engine, recordRepo, queueRepo, ingestor, s3Client, sender, cfg.Detection, cfg.S3, cfg.Email)
	queueSvc := service.NewQueueService(queueRepo, ingestor, s3Client, cat, cfg.Detection, cfg.Queue, cfg.S3)
	recordSvc := service.NewRecordService(recordRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	detectH := handler.NewDetectHandler(detectionSvc)
	queueH := handler.NewQueueHandler(queueSvc, recordSvc)
	recordH := handler.NewRecordHandler(recordSvc)
	caseH := handler.NewCaseHandler(cat, registry)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, authH, detectH, queueH, recordH, caseH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
