// Package catalog imports product seed files into the catalogue.
//
// A seed file is gzipped JSON lines, one product per line:
//
//	{"id":"P001","name":"Bamboo Toothbrush","price":"4.50","category":"bamboo","stock":120}
//
// isAvailable defaults to true when omitted.
package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Loader defines the interface for loading product seed files.
type Loader interface {
	// Load reads a gzipped seed file and returns its products in file order.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Record is one line of a seed file.
type Record struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	IsAvailable *bool           `json:"isAvailable,omitempty"`
}

// Product converts r into a catalogue record, rejecting unusable values.
func (r Record) Product() (model.Product, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return model.Product{}, fmt.Errorf("id is required")
	}
	if r.Price.IsNegative() {
		return model.Product{}, fmt.Errorf("product %s: price must not be negative", id)
	}
	if r.Stock < 0 {
		return model.Product{}, fmt.Errorf("product %s: stock must not be negative", id)
	}

	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}

	return model.Product{
		ID:          id,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Price:       r.Price,
		Category:    strings.ToLower(strings.TrimSpace(r.Category)),
		Stock:       r.Stock,
		IsAvailable: available,
	}, nil
}

// decode reads gzipped JSON lines from src. Blank lines are skipped.
func decode(ctx context.Context, src io.Reader, name string) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.Product
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%s line %d: invalid record: %w", name, lineNo, err)
		}
		p, err := rec.Product()
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, lineNo, err)
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed file %s: %w", name, err)
	}

	return products, nil
}
