package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"pubdocs/internal/client"
	"pubdocs/internal/config"
	"pubdocs/internal/sitemap"
)

func main() {
	cfg := config.Load()

	output := flag.String("output", "public/sitemap.xml", "output file path")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall fetch timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cli := client.New(client.Config{
		BaseURL:     cfg.Store.BaseURL,
		FileBaseURL: cfg.Store.FileBaseURL,
		MaxRetries:  cfg.Store.MaxRetries,
	})

	cat, err := cli.Catalog(ctx)
	if err != nil {
		log.Fatalf("failed to fetch catalog: %v", err)
	}

	xml, err := sitemap.Build(cfg.SiteBaseURL, cat.Documents, cat.Categories)
	if err != nil {
		log.Fatalf("failed to build sitemap: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := os.WriteFile(*output, xml, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *output, err)
	}
	log.Printf("wrote %s: %d documents, %d categories", *output, len(cat.Documents), len(cat.Categories))
}
