//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/catalog"

	"github.com/shopspring/decimal"
)

// Writes data/catalog/products.jsonl.gz, the default CATALOG_SEED_FILES entry.
// Run with: go run scripts/generate_sample_catalog.go
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	unavailable := false
	records := []catalog.Record{
		{ID: "P001", Name: "Bamboo Toothbrush", Description: "Biodegradable handle, soft bristles", Price: decimal.RequireFromString("4.50"), Category: "bamboo", Stock: 120},
		{ID: "P002", Name: "Bamboo Cutlery Set", Description: "Fork, knife, spoon and chopsticks", Price: decimal.RequireFromString("12.00"), Category: "bamboo", Stock: 60},
		{ID: "P003", Name: "Bamboo Fibre Towel", Description: "Bath towel, 70x140cm", Price: decimal.RequireFromString("18.75"), Category: "bamboo", Stock: 35},
		{ID: "P004", Name: "Steel Water Bottle", Description: "750ml, double walled", Price: decimal.RequireFromString("20.00"), Category: "kitchen", Stock: 80},
		{ID: "P005", Name: "Beeswax Wraps", Description: "Pack of three", Price: decimal.RequireFromString("9.99"), Category: "kitchen", Stock: 150},
		{ID: "P006", Name: "Compost Bin", Description: "5 litre countertop bin", Price: decimal.RequireFromString("24.50"), Category: "garden", Stock: 20},
		{ID: "P007", Name: "Seed Starter Kit", Description: "Coir pots and heirloom seeds", Price: decimal.RequireFromString("15.00"), Category: "garden", Stock: 0},
		{ID: "P008", Name: "Bamboo Desk Organiser", Description: "Discontinued", Price: decimal.RequireFromString("29.00"), Category: "bamboo", Stock: 5, IsAvailable: &unavailable},
	}

	filePath := filepath.Join(dataDir, "products.jsonl.gz")
	if err := writeSeedFile(filePath, records); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(records))
}

func writeSeedFile(filePath string, records []catalog.Record) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write product %s: %w", rec.ID, err)
		}
	}

	return nil
}
