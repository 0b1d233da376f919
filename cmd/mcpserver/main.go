package main

import (
	"log"
	"os"

	"ledgergate-backend/ai"
	"ledgergate-backend/ledger"
	"ledgergate-backend/mcp"
	"ledgergate-backend/mirror"
	"ledgergate-backend/services"
	"ledgergate-backend/storage"

	"github.com/mark3labs/mcp-go/server"
)

type config struct {
	MirrorBaseURL string
	GatewayURL    string
	GatewayAPIKey string
	AIProviderURL string
	AIAPIKey      string
	AIModel       string
	DatabaseURL   string
}

func loadConfig() config {
	return config{
		MirrorBaseURL: envDefault("MIRROR_BASE_URL", "https://testnet.mirrornode.hedera.com"),
		GatewayURL:    envDefault("LEDGER_GATEWAY_URL", "http://localhost:8090"),
		GatewayAPIKey: os.Getenv("LEDGER_GATEWAY_API_KEY"),
		AIProviderURL: envDefault("AI_PROVIDER_URL", "https://api.openai.com"),
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIModel:       envDefault("AI_MODEL", "gpt-4o-mini"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := loadConfig()

	mirrorClient := mirror.NewClient(cfg.MirrorBaseURL)
	gateway := ledger.NewGateway(cfg.GatewayURL, cfg.GatewayAPIKey)
	assistant := ai.NewClient(cfg.AIProviderURL, cfg.AIAPIKey, cfg.AIModel)

	var archive storage.Archive
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresArchive(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init archive: %v", err)
		}
		archive = pg
	} else {
		archive = storage.NewMemoryArchive()
	}
	defer archive.Close()

	topicSvc := services.NewTopicService(mirrorClient, gateway, gateway, archive)
	chatSvc := services.NewChatService(mirrorClient, gateway, assistant, archive)
	licenseSvc := services.NewLicenseService(gateway, gateway, archive)

	mcpServer := mcp.NewMCPServer(topicSvc, chatSvc, licenseSvc)

	log.Printf("Ledgergate MCP server starting (mirror=%s)", cfg.MirrorBaseURL)

	if err := server.ServeStdio(mcpServer.GetMCPServer()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
