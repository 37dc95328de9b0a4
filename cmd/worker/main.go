package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"

	"guestchat-backend/cmd"
	"guestchat-backend/internal/notify"
)

type WorkerConfig struct {
	RabbitMQURL string `env:"RABBITMQ_URL,notEmpty,required"`
	EmailAPIURL string `env:"EMAIL_API_URL"`
	EmailAPIKey string `env:"EMAIL_API_KEY"`
}

func main() {
	log.Println("Starting Worker Process...")

	cmd.LoadEnvFile()

	var cfg WorkerConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	var sender notify.EmailSender = notify.NoopEmailSender{}
	if cfg.EmailAPIURL != "" {
		sender = notify.NewRestEmailSender(cfg.EmailAPIURL, cfg.EmailAPIKey)
	}

	receiver, err := notify.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}

	worker := notify.NewWorker(receiver, sender)
	go worker.Start()

	log.Println("Worker started. Waiting for tasks. Press Ctrl+C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received, waiting for workers to finish...")
	worker.Stop()

	log.Println("Worker process stopped.")
}
