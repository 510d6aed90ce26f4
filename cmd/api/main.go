package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"legispuls/api/router"
	"legispuls/config"
	"legispuls/db"
	"legispuls/eventbus"
	"legispuls/logger"
	"legispuls/quota"
	"legispuls/repositories"
	"legispuls/sejm"
	"legispuls/services"
	"legispuls/summarizer"
)

// @title           LegisPuls API
// @version         1.0
// @description     API for browsing Polish legislative acts and consultations with AI summaries
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB: ", err)
	}

	generator, err := summarizer.NewGeneratorFromConfig(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("failed to initialize text generator: ", err)
	}

	var publisher eventbus.Publisher = eventbus.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kp, err := eventbus.NewKafkaPublisher(cfg.Kafka.BootstrapServers)
		if err != nil {
			log.Fatal("failed to initialize Kafka producer: ", err)
		}
		defer kp.Close()
		publisher = kp
	}

	limiter := quota.NewSummaryQuotaLimiterFromConfig(cfg)
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	summaryRepo := repositories.NewAISummaryRepository(db.Database())
	analysisRepo := repositories.NewCommentAnalysisRepository(db.Database())
	aiLogRepo := repositories.NewAILogRepository(db.Database())
	consultationRepo := repositories.NewConsultationRepository(db.Database())

	deps := router.Deps{
		Summary:       services.NewSummaryService(generator, summaryRepo, aiLogRepo, limiter, publisher, timeout),
		Comments:      services.NewCommentsService(generator, analysisRepo, aiLogRepo, limiter, publisher, timeout),
		Acts:          services.NewActService(sejm.New(cfg.Sejm.BaseURL)),
		Consultations: consultationRepo,
		HealthPing: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		},
	}

	r := router.New(deps)

	// The frontend runs on a different origin during development.
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	if err := http.ListenAndServe(":8080", handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
