package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

var seedProducts = []ProductInput{
	{Name: "Ceramic Coffee Mug", Description: "350ml stoneware mug, dishwasher safe.", Price: decimal.RequireFromString("12.90"), Stock: 120, ImageURL: "/images/mug.jpg"},
	{Name: "Wireless Mouse", Description: "2.4GHz ergonomic mouse with silent clicks.", Price: decimal.RequireFromString("24.50"), Stock: 80, ImageURL: "/images/mouse.jpg"},
	{Name: "Mechanical Keyboard", Description: "87-key hot-swappable keyboard, brown switches.", Price: decimal.RequireFromString("89.00"), Stock: 35, ImageURL: "/images/keyboard.jpg"},
	{Name: "Canvas Tote Bag", Description: "Heavy cotton tote with inner pocket.", Price: decimal.RequireFromString("15.00"), Stock: 200, ImageURL: "/images/tote.jpg"},
	{Name: "Stainless Water Bottle", Description: "750ml vacuum insulated bottle.", Price: decimal.RequireFromString("19.99"), Stock: 150, ImageURL: "/images/bottle.jpg"},
	{Name: "Desk Lamp", Description: "LED desk lamp with three color temperatures.", Price: decimal.RequireFromString("34.00"), Stock: 60, ImageURL: "/images/lamp.jpg"},
}

// SeedProducts fills an empty catalog with demo products. A non-empty catalog
// is left alone.
func SeedProducts(ctx context.Context, svc *CatalogService, store Store) error {
	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, in := range seedProducts {
		if _, err := svc.Create(ctx, in); err != nil {
			return fmt.Errorf("failed to seed %q: %w", in.Name, err)
		}
	}
	slog.Info("catalog seeded", "products", len(seedProducts))
	return nil
}
