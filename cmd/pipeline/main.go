package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"filing_digest/pkg/core/config"
	"filing_digest/pkg/core/edgar"
	"filing_digest/pkg/core/narrative"
	"filing_digest/pkg/core/pipeline"
	"filing_digest/pkg/core/store"
	"filing_digest/pkg/models"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		configPath = flag.String("config", "config/service.yaml", "path to service configuration")
		ticker     = flag.String("ticker", "", "ticker symbol to resolve via SEC (e.g. AAPL)")
		cik        = flag.String("cik", "", "company CIK (skips -ticker resolution)")
		accession  = flag.String("accession", "", "accession number; latest filing when empty")
		form       = flag.String("form", "10-Q", "filing form type (10-Q or 10-K)")
		outPath    = flag.String("out", "", "write the digest markdown to this file")
		save       = flag.Bool("save", false, "persist the accepted digest to Postgres")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *ticker == "" && *cik == "" {
		log.Fatal("Error: provide -ticker or -cik")
	}

	fmt.Println("🚀 Filing Digest Pipeline Starting...")
	ctx := context.Background()

	client := edgar.NewClient()
	cache := edgar.NewFilingCache(cfg.Edgar.CacheDir, cfg.Edgar.TTL())
	client.SetCache(cache)
	fmt.Printf("Using filing cache at %s (TTL %v)\n", cache.Dir(), cfg.Edgar.TTL())

	resolvedCIK := *cik
	if resolvedCIK == "" {
		resolvedCIK, err = client.LookupCIK(ctx, *ticker)
		if err != nil {
			log.Fatalf("CIK lookup failed: %v", err)
		}
	}

	meta := models.FilingMeta{
		CIK:        resolvedCIK,
		Symbol:     strings.ToUpper(*ticker),
		FilingType: *form,
	}

	acc := *accession
	if acc == "" {
		filing, err := client.LatestFiling(ctx, resolvedCIK, *form)
		if err != nil {
			log.Fatalf("Filing lookup failed: %v", err)
		}
		acc = filing.Accession
		meta.CompanyName = filing.CompanyName
		meta.FilingDate = filing.FilingDate
		meta.PeriodEnd = filing.ReportDate
		fmt.Printf("Resolved latest %s: %s (filed %s)\n", *form, acc, filing.FilingDate)
	}

	orch := pipeline.NewOrchestrator(client)

	if cfg.Narrative.Enabled {
		enricher := narrative.NewEnricher(&narrative.GeminiProvider{Model: cfg.Narrative.Model})
		if cfg.Narrative.RiskAgent {
			agent, err := narrative.NewRiskAgent(ctx)
			if err != nil {
				log.Printf("⚠️ WARNING: risk agent unavailable: %v", err)
			} else {
				enricher.SetRiskAgent(agent)
			}
		}
		orch.SetEnricher(enricher)
	}

	if *save {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Database error: %v", err)
		}
		defer store.Close()
		orch.SetRepository(store.NewDigestRepo())
	}

	result, err := orch.RunForFiling(ctx, pipeline.Request{Meta: meta, Accession: acc})
	if err != nil {
		log.Fatalf("Digest failed: %v", err)
	}

	if len(result.Meta.MaterialMetrics) > 0 {
		fmt.Printf("Material metrics: %s\n", strings.Join(result.Meta.MaterialMetrics, ", "))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(result.Markdown), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", *outPath, err)
		}
		fmt.Printf("📄 Digest written to %s\n", *outPath)
	} else {
		fmt.Println("\n" + result.Markdown)
	}
}
