package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"ledgergate-backend/container"
	"ledgergate-backend/middleware"

	_ "ledgergate-backend/docs"
)

// @title Ledgergate Backend API
// @version 1.0
// @description Ledger-backed backend for license minting, topic chat records, and quota-gated AI chat
// @host localhost:8080
// @BasePath /
func main() {
	c := container.NewContainer()

	mux := http.NewServeMux()
	setupRoutes(mux, c)

	handler := middleware.Recovery(
		middleware.Logging(
			middleware.CORS(
				middleware.SecurityHeaders(
					middleware.ValidateQuery(
						middleware.Metrics(
							middleware.Timeout(60 * time.Second)(mux),
						),
					),
				),
			),
		),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Ledgergate backend listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func setupRoutes(mux *http.ServeMux, c *container.Container) {
	requireKey := middleware.APIAuth(c.APIKeys)

	// Health and metrics
	mux.HandleFunc("/api/health", c.HealthHandler.HandleHealth)
	mux.Handle("/metrics", middleware.MetricsHandler())

	// Auth
	mux.HandleFunc("/api/auth/register", c.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/challenge", c.AuthHandler.HandleChallenge)
	mux.HandleFunc("/api/auth/account", c.AuthHandler.HandleBindAccount)

	// Topics: creation is gated, reads are public
	mux.Handle("/api/topics", requireKey(http.HandlerFunc(c.TopicHandler.HandleCreateTopic)))
	mux.HandleFunc("/api/topics/", c.TopicHandler.HandleTopic)

	// Projects and subscriptions
	mux.Handle("/api/projects", requireKey(http.HandlerFunc(c.TopicHandler.HandleCreateProject)))
	mux.Handle("/api/subscriptions", requireKey(http.HandlerFunc(c.TopicHandler.HandleCreateSubscription)))

	// Chat
	mux.Handle("/api/chat/", requireKey(http.HandlerFunc(c.ChatHandler.HandleChatMessage)))

	// Licenses
	mux.Handle("/api/licenses", requireKey(http.HandlerFunc(c.LicenseHandler.HandleLicenses)))
	mux.HandleFunc("/api/licenses/", c.LicenseHandler.HandleLicense)

	// Archived receipts
	mux.HandleFunc("/api/data/receipts", c.DataHandler.HandleReceipts)
	mux.HandleFunc("/api/data/licenses", c.DataHandler.HandleLicenses)
}
