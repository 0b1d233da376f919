package container

import (
	"context"
	"log"
	"os"
	"time"

	"ledgergate-backend/ai"
	"ledgergate-backend/handlers"
	"ledgergate-backend/ipfs"
	"ledgergate-backend/ledger"
	"ledgergate-backend/mirror"
	"ledgergate-backend/services"
	"ledgergate-backend/storage"
	auth "ledgergate-backend/storage/auth"
)

// Container holds all application dependencies
type Container struct {
	// Clients
	Mirror  *mirror.Client
	Gateway *ledger.Gateway
	Archive storage.Archive

	// Auth
	APIKeys    auth.APIKeyValidator
	Challenges *auth.ChallengeStore

	// Services
	TopicService   *services.TopicService
	ChatService    *services.ChatService
	LicenseService *services.LicenseService
	QRCodeService  *services.QRCodeService
	HealthService  *services.HealthService

	// Handlers
	HealthHandler  *handlers.HealthHandler
	TopicHandler   *handlers.TopicHandler
	ChatHandler    *handlers.ChatHandler
	LicenseHandler *handlers.LicenseHandler
	AuthHandler    *handlers.AuthHandler
	DataHandler    *handlers.DataHandler
}

// NewContainer creates a new dependency container from the environment.
func NewContainer() *Container {
	mirrorClient := mirror.NewClient(envDefault("MIRROR_BASE_URL", "https://testnet.mirrornode.hedera.com"))
	gateway := ledger.NewGateway(
		envDefault("LEDGER_GATEWAY_URL", "http://localhost:8090"),
		os.Getenv("LEDGER_GATEWAY_API_KEY"),
	)
	assistant := ai.NewClient(
		envDefault("AI_PROVIDER_URL", "https://api.openai.com"),
		os.Getenv("AI_API_KEY"),
		envDefault("AI_MODEL", "gpt-4o-mini"),
	)

	archive := newArchive()
	apiKeys, challenges := newAuthStores()

	// Initialize services
	topicService := services.NewTopicService(mirrorClient, gateway, gateway, archive)
	chatService := services.NewChatService(mirrorClient, gateway, assistant, archive)
	licenseService := services.NewLicenseService(gateway, gateway, archive)
	if os.Getenv("IPFS_API_URL") != "" {
		licenseService.SetMetadataPublisher(ipfs.NewClientFromEnv())
		log.Println("License metadata pinning enabled")
	}
	qrService := services.NewQRCodeService(envDefault("LICENSE_VERIFY_URL", "https://ledgergate.app/verify"))
	healthService := services.NewHealthService()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(healthService)
	topicHandler := handlers.NewTopicHandler(topicService)
	chatHandler := handlers.NewChatHandler(chatService)
	qrHandler := handlers.NewQRCodeHandler(qrService, licenseService)
	licenseHandler := handlers.NewLicenseHandler(licenseService, qrHandler)
	dataHandler := handlers.NewDataHandler(archive)

	return &Container{
		Mirror:  mirrorClient,
		Gateway: gateway,
		Archive: archive,

		APIKeys:    apiKeys.validator,
		Challenges: challenges,

		TopicService:   topicService,
		ChatService:    chatService,
		LicenseService: licenseService,
		QRCodeService:  qrService,
		HealthService:  healthService,

		HealthHandler:  healthHandler,
		TopicHandler:   topicHandler,
		ChatHandler:    chatHandler,
		LicenseHandler: licenseHandler,
		AuthHandler:    handlers.NewAuthHandler(apiKeys.issuer, apiKeys.updater, challenges),
		DataHandler:    dataHandler,
	}
}

// newArchive picks the Postgres archive when DATABASE_URL is set, otherwise
// the in-memory archive.
func newArchive() storage.Archive {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return storage.NewMemoryArchive()
	}
	archive, err := storage.NewPostgresArchive(dsn)
	if err != nil {
		log.Printf("Postgres archive unavailable, falling back to memory: %v", err)
		return storage.NewMemoryArchive()
	}
	log.Println("Using Postgres receipt archive")
	return archive
}

type apiKeyStores struct {
	validator auth.APIKeyValidator
	issuer    auth.APIKeyIssuer
	updater   auth.APIKeyAccountUpdater
}

// newAuthStores picks the Postgres API key store when AUTH_PG_DSN is set.
func newAuthStores() (apiKeyStores, *auth.ChallengeStore) {
	challenges := auth.NewChallengeStore(10 * time.Minute)

	if dsn := os.Getenv("AUTH_PG_DSN"); dsn != "" {
		store, err := auth.NewPGAPIKeyStore(context.Background(), dsn)
		if err == nil {
			store.Seed(os.Getenv("LEDGERGATE_API_KEY"), "", "seed")
			return apiKeyStores{validator: store, issuer: store, updater: store}, challenges
		}
		log.Printf("Postgres API key store unavailable, falling back to memory: %v", err)
	}

	store := auth.NewAPIKeyStore()
	store.Seed(os.Getenv("LEDGERGATE_API_KEY"), "", "seed")
	return apiKeyStores{validator: store, issuer: store, updater: store}, challenges
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
