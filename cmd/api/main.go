package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/johnquangdev/opportunity-notes/internal/server"
	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

// @title           Opportunity Notes API
// @version         1.0
// @description     Turns sales call transcripts into structured opportunity notes, exports them as CSV and pushes comments to Salesforce

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
}
