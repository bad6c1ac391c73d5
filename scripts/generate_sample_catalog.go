//go:build ignore

// Command generate_sample_catalog writes a gzipped discount snapshot usable
// with CATALOG_SOURCE=file or uploaded as the S3 catalog object.
//
//	go run scripts/generate_sample_catalog.go [output]
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"storefront/internal/discount"

	"github.com/shopspring/decimal"
)

func main() {
	out := "data/discounts.json.gz"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	created := now.AddDate(0, -1, 0)
	nextMonth := now.AddDate(0, 1, 0)
	lastWeek := now.AddDate(0, 0, -7)
	fifty := decimal.NewFromInt(50)
	limit := func(n int) *int { return &n }

	catalog := []discount.Record{
		{
			ID:           "gid://shopify/DiscountCodeNode/1001",
			Title:        "Ten percent off",
			Codes:        []discount.CodeEntry{{Code: "SAVE10", UsageCount: 12}},
			Kind:         discount.KindBasic,
			Value:        discount.Percentage{Percent: decimal.NewFromInt(10)},
			Status:       "ACTIVE",
			CreatedAt:    &created,
			EndsAt:       &nextMonth,
			UsageLimit:   limit(100),
			CombinesWith: discount.CombinesWith{ProductDiscounts: true, ShippingDiscounts: true},
		},
		{
			ID:              "gid://shopify/DiscountCodeNode/1002",
			Title:           "Free shipping over 50",
			Codes:           []discount.CodeEntry{{Code: "FREESHIP", UsageCount: 3}},
			Kind:            discount.KindFreeShipping,
			Value:           discount.FreeShipping{},
			Status:          "ACTIVE",
			CreatedAt:       &created,
			CombinesWith:    discount.CombinesWith{OrderDiscounts: true},
			MinimumSubtotal: &fifty,
		},
		{
			ID:                 "gid://shopify/DiscountCodeNode/1003",
			Title:              "Five off the tee",
			Codes:              []discount.CodeEntry{{Code: "TEE5", UsageCount: 9}},
			Kind:               discount.KindBasic,
			Value:              discount.FixedAmount{Amount: decimal.NewFromInt(5), CurrencyCode: "USD"},
			Status:             "ACTIVE",
			CreatedAt:          &created,
			UsageLimit:         limit(10),
			RequiredVariantIDs: []string{"gid://shopify/ProductVariant/42"},
		},
		{
			ID:           "gid://shopify/DiscountCodeNode/1004",
			Title:        "Buy one get one half off",
			Codes:        []discount.CodeEntry{{Code: "BOGO50", UsageCount: 0}},
			Kind:         discount.KindBuyXGetY,
			Value:        discount.Percentage{Percent: decimal.NewFromInt(50)},
			Status:       "ACTIVE",
			CreatedAt:    &now,
			CombinesWith: discount.CombinesWith{OrderDiscounts: true, ProductDiscounts: true, ShippingDiscounts: true},
		},
		{
			ID:         "gid://shopify/DiscountCodeNode/1005",
			Title:      "Last season",
			Codes:      []discount.CodeEntry{{Code: "SUMMER", UsageCount: 40}},
			Kind:       discount.KindBasic,
			Value:      discount.Percentage{Percent: decimal.NewFromInt(20)},
			Status:     "ACTIVE",
			CreatedAt:  &created,
			EndsAt:     &lastWeek,
			UsageLimit: limit(40),
		},
	}

	if err := writeSnapshot(out, catalog); err != nil {
		log.Fatalf("Failed to create %s: %v", out, err)
	}

	fmt.Printf("Created %s with %d discounts\n", out, len(catalog))
	fmt.Println("\nCodes:")
	fmt.Println("  - SAVE10   basic 10%, stacks with shipping")
	fmt.Println("  - FREESHIP free shipping, subtotal >= 50")
	fmt.Println("  - TEE5     5 USD, requires variant 42, nearing its limit")
	fmt.Println("  - BOGO50   buy x get y, stacks with everything")
	fmt.Println("  - SUMMER   expired and at its limit")
}

func writeSnapshot(path string, catalog []discount.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	return nil
}
