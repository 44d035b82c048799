package main

import (
	"log"
	"net/http"
	"os"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	os.MkdirAll(cfg.DraftOutputDir, 0755)

	var api *slack.Client
	if cfg.NotifyConfigured() {
		api = slack.New(cfg.SlackBotToken)
		log.Printf("Slack notifications enabled channel=%s", cfg.NotifyChannelID)
	}

	sessions := NewSessionManager()
	StartCleanupScheduler(cfg, sessions)

	server := NewServer(cfg, db, sessions, api)

	log.Printf("Starting DSS review server on %s (provider: %s)", cfg.ListenAddr, cfg.LLMProvider)
	if err := http.ListenAndServe(cfg.ListenAddr, server.Handler()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
