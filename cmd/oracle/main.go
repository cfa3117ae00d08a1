package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/clients"
	"scavnger-backend/internal/config"
	"scavnger-backend/internal/db"
	"scavnger-backend/internal/events"
	"scavnger-backend/internal/handlers"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/repository"
	"scavnger-backend/internal/router"
	"scavnger-backend/internal/services"
)

// The verifier oracle holds the signing key and talks to the model, the
// chain and the sponsorship relay. It runs separately from the application
// server so key material and model credentials stay off the public-facing
// instance.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := config.LoadConfig(""); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	signer, err := services.NewKeyService(cfg.Oracle.VerifierPrivateKey)
	if err != nil {
		log.Fatalf("Failed to load verifier key: %v", err)
	}
	logger.WithField("verifier", signer.Address()).Info("🔑 Verifier account loaded")

	ctx := context.Background()
	oracle, err := services.NewProofVerifier(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		log.Fatalf("Failed to create proof verifier: %v", err)
	}

	chain := clients.NewChainClient(cfg.Chain.RPCURL, time.Duration(cfg.Chain.FinalityTimeout)*time.Second)
	builder := clients.NewTxnBuilder(chain, cfg.Chain.ContractAddress, cfg.Chain.ChainID, true)
	sponsor := clients.NewSponsorClient(cfg.Sponsor.BaseURL, cfg.Sponsor.APIKey, time.Duration(cfg.Sponsor.Timeout)*time.Second)

	// The off-chain ledger is optional for the oracle. With a database
	// configured it syncs participant lists itself; without one, sync is
	// left to the application server.
	var ledger pipeline.LedgerSync
	if cfg.Database.DSN != "" {
		db.InitDB()
		challengeRepo := repository.NewChallengeRepository(db.DB)

		var publisher *events.Publisher
		if cfg.NATS.URL != "" {
			natsClient, err := clients.NewNATSClient(cfg.NATS.URL, time.Duration(cfg.NATS.Timeout)*time.Second)
			if err != nil {
				logger.WithError(err).Warn("⚠️ NATS unavailable, events will not be published")
			} else {
				defer natsClient.Close()
				publisher = events.NewPublisher(natsClient)
			}
		}
		ledger = services.NewLedgerSyncService(challengeRepo, publisher, logger)
	} else {
		logger.Info("ℹ️ No database configured, running chain-only")
	}

	pipe := pipeline.NewCheckinPipeline(oracle, builder, signer, sponsor, chain, ledger, logger)
	checkinHandler := handlers.NewCheckinHandler(pipe, signer, logger)

	engine := router.NewOracleRouter(checkinHandler, cfg.Admin.AllowedIPs, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Oracle.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		logger.WithField("addr", addr).Info("🚀 Verifier oracle listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}
