package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"guestchat-backend/cmd"
	"guestchat-backend/internal/api"
	"guestchat-backend/internal/chat"
	"guestchat-backend/internal/database"
	"guestchat-backend/internal/notify"
	pkgapi "guestchat-backend/pkg/api"
)

type APIConfig struct {
	DatabaseURL string `env:"DATABASE_URL,notEmpty,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	EmailAPIURL string `env:"EMAIL_API_URL"`
	EmailAPIKey string `env:"EMAIL_API_KEY"`
	BaseURL     string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8001"`
	APIPort     string `env:"API_PORT" envDefault:"8001"`
	SendRetries int    `env:"SEND_RETRIES" envDefault:"3"`
	SeedDemo    bool   `env:"SEED_DEMO_DATA" envDefault:"false"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.SeedDemo {
		cmd.SeedDemoData(db)
	}

	var sender notify.EmailSender = notify.NoopEmailSender{}
	if cfg.EmailAPIURL != "" {
		sender = notify.NewRestEmailSender(cfg.EmailAPIURL, cfg.EmailAPIKey)
	}

	// Without a broker the invitation worker runs in process off an in-memory
	// queue, so single-binary deployments still deliver emails.
	var publisher notify.Publisher
	var localWorker *notify.Worker
	if cfg.RabbitMQURL != "" {
		rabbitPublisher, err := notify.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rabbitPublisher
	} else {
		queue := notify.NewInMemoryQueue()
		publisher = queue
		localWorker = notify.NewWorker(queue, sender)
		go localWorker.Start()
	}
	defer publisher.Close()

	store := chat.NewGormSessionStore(db)
	ledger := chat.NewGormMessageLedger(db)
	service := chat.NewService(
		store,
		ledger,
		chat.NewGormJobCatalog(db),
		chat.NewGormRecruiterDirectory(db),
		publisher,
		notify.NewOutbox(db),
		cfg.BaseURL,
		chat.WithMaxAttempts(cfg.SendRetries),
	)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Recruiter-Id"},
		MaxAge:         300,
	}))

	apiHandler := api.NewGuestChatService(service)
	apiHandler.AddRoutes(r)

	r.Get("/health", api.RestHandler(func(r *http.Request) (any, error) {
		return pkgapi.HealthResponse{Status: "ok"}, nil
	}))

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	if localWorker != nil {
		localWorker.Stop()
	}

	log.Println("Server stopped.")
}
