package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"filing_digest/pkg/api/digest"
	"filing_digest/pkg/core/config"
	"filing_digest/pkg/core/edgar"
	"filing_digest/pkg/core/narrative"
	"filing_digest/pkg/core/pipeline"
	"filing_digest/pkg/core/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load("config/service.yaml")
	if err != nil {
		fmt.Printf("[FATAL] Config error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	client := edgar.NewClient()
	client.SetCache(edgar.NewFilingCache(cfg.Edgar.CacheDir, cfg.Edgar.TTL()))

	orch := pipeline.NewOrchestrator(client)

	if cfg.Narrative.Enabled {
		enricher := narrative.NewEnricher(&narrative.GeminiProvider{Model: cfg.Narrative.Model})
		if cfg.Narrative.RiskAgent {
			agent, agentErr := narrative.NewRiskAgent(ctx)
			if agentErr != nil {
				fmt.Printf("[WARNING] Risk agent unavailable: %v\n", agentErr)
			} else {
				enricher.SetRiskAgent(agent)
			}
		}
		orch.SetEnricher(enricher)
		fmt.Println("Narrative enrichment enabled.")
	}

	// Persistence is optional. Without DATABASE_URL digests are only
	// returned to the caller.
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[FATAL] Database error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		orch.SetRepository(store.NewDigestRepo())
		fmt.Println("Digest persistence enabled.")
	}

	digest.InitHandler(orch)
	http.HandleFunc("/api/digest/run", digest.HandleRunDigest)

	fmt.Printf("API server starting on %s...\n", cfg.Server.Addr)
	fmt.Println("  - POST /api/digest/run")

	if err := http.ListenAndServe(cfg.Server.Addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
