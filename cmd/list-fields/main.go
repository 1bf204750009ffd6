package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FilipposDe/shopify-fields-app/internal/config"
	"github.com/FilipposDe/shopify-fields-app/internal/repository/store"
)

// Usage: go run ./cmd/list-fields <shop>.myshopify.com
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: list-fields <shop>.myshopify.com")
		os.Exit(1)
	}
	shopDomain := os.Args[1]

	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	repos, closeStore, err := store.Open(ctx, cfg, false, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	shop, err := repos.Shop.GetByDomain(ctx, shopDomain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load shop: %v\n", err)
		os.Exit(1)
	}

	fields, err := repos.Field.ListByShop(ctx, shop.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list fields: %v\n", err)
		os.Exit(1)
	}

	status := "active"
	if !shop.IsActive {
		status = "inactive"
	}
	fmt.Printf("Shop %s (%s)\n\n", shop.ShopDomain, status)
	if len(fields) == 0 {
		fmt.Println("  No fields defined.")
		return
	}
	for _, f := range fields {
		fmt.Printf("  %-30s %-6s %s\n", f.Name, f.Type, f.Description)
	}
}
