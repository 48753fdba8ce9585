// Server runs the HTTP API plus the Telegram bot consumer and the token
// reaper. Configure via .env or environment; see internal/config.
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sportbuddy/backend/internal/account/repository"
	accountservice "sportbuddy/backend/internal/account/service"
	"sportbuddy/backend/internal/audit"
	auditrepo "sportbuddy/backend/internal/audit/repository"
	"sportbuddy/backend/internal/config"
	"sportbuddy/backend/internal/db"
	"sportbuddy/backend/internal/login/bot"
	loginservice "sportbuddy/backend/internal/login/service"
	loginstore "sportbuddy/backend/internal/login/store"
	"sportbuddy/backend/internal/server"
	"sportbuddy/backend/internal/storage"
	"sportbuddy/backend/internal/telegram"
	"sportbuddy/backend/internal/telemetry"
	telemetryotel "sportbuddy/backend/internal/telemetry/otel"
	"sportbuddy/backend/internal/telemetry/producer"
)

const reaperInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "sportbuddy-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	var dbConn *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer dbConn.Close()
	}

	var tokenStore loginstore.Store
	switch cfg.LoginStore {
	case "postgres":
		tokenStore = loginstore.NewPostgresStore(dbConn)
	default:
		tokenStore = loginstore.NewMemoryStore()
	}

	var accountRepo accountservice.AccountRepo
	var auditor loginservice.Auditor
	if dbConn != nil {
		accountRepo = repository.NewPostgresRepository(dbConn)
		auditor = audit.NewLogger(auditrepo.NewPostgresRepository(dbConn))
	} else {
		log.Println("server: no DATABASE_URL; accounts are kept in memory")
		accountRepo = repository.NewMemoryRepository()
		auditor = audit.NewLogger(nil)
	}
	accounts := accountservice.NewAccountService(accountRepo)

	login := loginservice.NewLoginService(tokenStore, accounts, auditor, cfg.TelegramBotUsername, cfg.TokenTTL())

	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	var events producer.Producer
	if kafkaProducer != nil {
		events = kafkaProducer
		defer kafkaProducer.Close()
	}

	var avatars *storage.AvatarStore
	if cfg.S3Bucket != "" {
		avatars, err = storage.NewAvatarStore(ctx, cfg)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
	}

	deps := server.Deps{
		Login:          login,
		Profiles:       accounts,
		DB:             dbConn,
		Telemetry:      events,
		AllowedOrigins: cfg.CORSOrigins(),
	}
	if avatars != nil {
		deps.Avatars = avatars
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.TelegramBotToken != "" {
		client := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramAPIBaseURL)
		consumer := telegram.NewConsumer(client, bot.New(login, client))
		go consumer.Run(ctx)
		log.Printf("telegram consumer started for @%s", cfg.TelegramBotUsername)
	} else {
		log.Println("server: no TELEGRAM_BOT_TOKEN; bot consumer disabled")
	}

	go runReaper(ctx, login)

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	cancel()

	// Let in-flight async telemetry emits finish before tearing down providers.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// runReaper deletes expired login tokens on a fixed interval.
func runReaper(ctx context.Context, login *loginservice.LoginService) {
	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := login.DeleteExpired(ctx)
			if err != nil {
				log.Printf("reaper: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("reaper: removed %d expired login tokens", n)
			}
		}
	}
}
