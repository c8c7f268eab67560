package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// MigrateLegacyPriceAttribute folds an old single price-attribute
// selection into the display-attribute list for installations that
// predate configurable attributes. The price attribute key itself stays
// in place since the selector still uses it as the price source.
func MigrateLegacyPriceAttribute(ctx context.Context, provider *Provider, logger *slog.Logger) error {
	current, ok, err := provider.store.Get(ctx, KeyDisplayAttributes)
	if err != nil {
		return fmt.Errorf("read display attributes: %w", err)
	}
	if ok && strings.TrimSpace(current) != "" {
		return nil
	}

	priceAttribute, err := provider.PriceAttribute(ctx)
	if err != nil {
		return err
	}
	if priceAttribute == "" {
		return nil
	}

	attributes := []string{"name", "description", "url"}
	found := false
	for _, code := range attributes {
		if code == priceAttribute {
			found = true
			break
		}
	}
	if !found {
		attributes = append(attributes, priceAttribute)
	}

	if err := provider.SaveDisplayAttributes(ctx, attributes); err != nil {
		return fmt.Errorf("save migrated attributes: %w", err)
	}

	if logger != nil {
		logger.Info("migrated legacy price attribute into display attributes",
			"price_attribute", priceAttribute)
	}
	return nil
}
