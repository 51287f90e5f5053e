//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"

	"github.com/jackc/pgx/v5"
)

// Connects with the same settings as the API server and reports the
// database name and server version. Run with: go run scripts/check_db.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName, version string
	err = conn.QueryRow(ctx, "SELECT current_database(), version()").Scan(&dbName, &version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s\n%s\n", dbName, version)
}
