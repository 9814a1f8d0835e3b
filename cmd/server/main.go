package main

import (
	"fmt"
	"log"

	"evidos/internal/config"
	"evidos/internal/extractor"
	"evidos/internal/gateway"
	"evidos/internal/gateway/gemini"
	"evidos/internal/gateway/openai"
	"evidos/internal/handler"
	"evidos/internal/pipeline"
	"evidos/internal/port"
	"evidos/internal/progress"
	"evidos/internal/repository/postgres"
	"evidos/internal/router"
	s3storage "evidos/internal/storage/s3"
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
	systemRepo := postgres.NewSystemRepo(db)
	documentRepo := postgres.NewDocumentRepo(db)
	controlRepo := postgres.NewControlRepo(db)
	evidenceRepo := postgres.NewEvidenceRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Completion providers
	gateway.RegisterProvider("openai", func(c *config.AIProviderConfig) (port.CompletionGateway, error) {
		return openai.NewGateway(c), nil
	})
	gateway.RegisterProvider("gemini", func(c *config.AIProviderConfig) (port.CompletionGateway, error) {
		return gemini.NewGateway(c), nil
	})

	completionGW, err := buildCompletionGateway(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize completion gateway: %w", err)
	}

	// Pipeline
	tracker := progress.NewTracker()
	pipe := pipeline.NewPipeline(
		documentRepo, controlRepo, evidenceRepo,
		s3Client, extractor.New(), completionGW,
		tracker, cfg.Pipeline,
	)

	// Initialize handlers
	systemH := handler.NewSystemHandler(systemRepo)
	documentH := handler.NewDocumentHandler(documentRepo, systemRepo, evidenceRepo, s3Client, cfg.S3.Bucket)
	analysisH := handler.NewAnalysisHandler(pipe, documentRepo, systemRepo, evidenceRepo)
	evidenceH := handler.NewEvidenceHandler(evidenceRepo, systemRepo)
	healthH := handler.NewHealthHandler(db, completionGW != nil)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, systemH, documentH, analysisH, evidenceH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildCompletionGateway assembles the provider chain from config. A missing
// primary API key disables the AI path entirely; a configured secondary
// provider becomes the fallback.
func buildCompletionGateway(cfg *config.Config) (port.CompletionGateway, error) {
	primary := cfg.AI.PrimaryConfig()
	if primary == nil || primary.APIKey == "" {
		log.Printf("main: no AI provider configured, analysis will use the heuristic path")
		return nil, nil
	}

	var gateways []port.CompletionGateway
	var names []string

	gw, err := gateway.NewGateway(primary)
	if err != nil {
		return nil, err
	}
	gateways = append(gateways, gw)
	names = append(names, primary.Provider)

	if secondary := cfg.AI.SecondaryConfig(); secondary != nil && secondary.APIKey != "" {
		gw, err := gateway.NewGateway(secondary)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, gw)
		names = append(names, secondary.Provider)
	}

	if len(gateways) == 1 {
		return gateways[0], nil
	}
	return gateway.NewFallbackGateway(gateways, names), nil
}
