package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scavnger-backend/internal/clients"
	"scavnger-backend/internal/config"
	"scavnger-backend/internal/db"
	"scavnger-backend/internal/events"
	"scavnger-backend/internal/pipeline"
	"scavnger-backend/internal/repository"
	"scavnger-backend/internal/services"
)

// ServiceContainer holds the application server's wired dependencies.
type ServiceContainer struct {
	// Database
	DB *gorm.DB

	// Repositories
	ChallengeRepo repository.ChallengeRepository
	ProfileRepo   repository.ProfileRepository
	CheckinRepo   repository.CheckinRepository
	ReviewRepo    repository.ReviewRepository

	// Clients
	ChainClient   *clients.ChainClient
	SponsorClient *clients.SponsorClient
	OracleClient  *clients.OracleClient
	NATSClient    *clients.NATSClient
	TxnBuilder    *clients.TxnBuilder

	// Events
	Publisher *events.Publisher

	// Services
	PushService      *services.PushService
	ChallengeService *services.ChallengeService
	CheckinService   *services.CheckinService
	ReviewService    *services.ReviewService
	AdminAuthService *services.AdminAuthService
	LedgerSync       *services.LedgerSyncService

	// Submission pipeline for operator-approved check-ins. Nil when no
	// verifier key is configured on this instance.
	Pipeline *pipeline.CheckinPipeline

	Logger *logrus.Logger
}

// Global service container instance
var Container *ServiceContainer
var containerOnce sync.Once

// InitializeContainer wires the container once, from config and the
// already-initialized database.
func InitializeContainer(logger *logrus.Logger) (*ServiceContainer, error) {
	var initErr error

	containerOnce.Do(func() {
		log.Println("🚀 Initializing Service Container...")

		if logger == nil {
			logger = logrus.New()
		}

		cfg := config.AppConfig
		if cfg == nil {
			initErr = fmt.Errorf("configuration not loaded")
			return
		}

		container := &ServiceContainer{
			DB:     db.DB,
			Logger: logger,
		}

		// 1. Repositories
		container.ChallengeRepo = repository.NewChallengeRepository(db.DB)
		container.ProfileRepo = repository.NewProfileRepository(db.DB)
		container.CheckinRepo = repository.NewCheckinRepository(db.DB)
		container.ReviewRepo = repository.NewReviewRepository(db.DB)

		// 2. Clients
		container.ChainClient = clients.NewChainClient(cfg.Chain.RPCURL, time.Duration(cfg.Chain.FinalityTimeout)*time.Second)
		container.SponsorClient = clients.NewSponsorClient(cfg.Sponsor.BaseURL, cfg.Sponsor.APIKey, time.Duration(cfg.Sponsor.Timeout)*time.Second)
		container.OracleClient = clients.NewOracleClient(config.GetOracleURL())
		container.TxnBuilder = clients.NewTxnBuilder(container.ChainClient, cfg.Chain.ContractAddress, cfg.Chain.ChainID, true)

		// 3. NATS is optional; the publisher degrades to a no-op without it.
		if cfg.NATS.URL != "" {
			natsClient, err := clients.NewNATSClient(cfg.NATS.URL, time.Duration(cfg.NATS.Timeout)*time.Second)
			if err != nil {
				logger.WithError(err).Warn("⚠️ NATS unavailable, events will not be published")
			} else {
				container.NATSClient = natsClient
			}
		}
		container.Publisher = events.NewPublisher(container.NATSClient)

		// 4. Services
		container.PushService = services.NewPushService()
		container.ChallengeService = services.NewChallengeService(container.ChallengeRepo, container.Publisher, logger)
		container.AdminAuthService = services.NewAdminAuthService(cfg.Admin.Username, cfg.Admin.TOTPSecret, cfg.Admin.JWTSecret, logger)
		container.LedgerSync = services.NewLedgerSyncService(container.ChallengeRepo, container.Publisher, logger)

		// 5. Chain submission pipeline, available when this instance holds
		// the verifier key. Operator approvals of manual-review check-ins
		// are submitted here rather than routed back through the oracle.
		if cfg.Oracle.VerifierPrivateKey != "" {
			signer, err := services.NewKeyService(cfg.Oracle.VerifierPrivateKey)
			if err != nil {
				initErr = fmt.Errorf("failed to load verifier key: %w", err)
				return
			}
			container.Pipeline = pipeline.NewCheckinPipeline(
				nil, // no oracle stage, approvals enter at Submit
				container.TxnBuilder,
				signer,
				container.SponsorClient,
				container.ChainClient,
				container.LedgerSync,
				logger,
			)
		} else {
			logger.Info("ℹ️ No verifier key configured, manual-review approvals cannot submit on chain")
		}

		container.ReviewService = services.NewReviewService(
			container.ReviewRepo,
			container.CheckinRepo,
			container.ChallengeRepo,
			container.Pipeline,
			container.PushService,
			logger,
		)
		container.CheckinService = services.NewCheckinService(
			container.ChallengeRepo,
			container.CheckinRepo,
			container.ReviewService,
			container.OracleClient,
			container.PushService,
			logger,
		)

		log.Println("✅ Service Container initialized")
		Container = container
	})

	if initErr != nil {
		return nil, initErr
	}
	return Container, nil
}

// Close releases the container's long-lived resources.
func (c *ServiceContainer) Close() {
	if c.NATSClient != nil {
		c.NATSClient.Close()
	}
}
