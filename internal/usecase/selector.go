package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fbsync/internal/domain"
)

// pseudoAttributes are rendered from candidate fields, not fetched from
// the catalog as custom attribute values.
var pseudoAttributes = map[string]struct{}{
	"name":              {},
	"url":               {},
	"description":       {},
	"short_description": {},
	"price":             {},
	"special_price":     {},
	"final_price":       {},
}

// selectCandidates queries the catalog for the window, excluding SKUs
// already published, and creates one pending ledger record per match
// before returning it. Ledger creation is deliberately unconditional on
// eventual publish success; a crash between here and publishing leaves
// pending rows that a later run re-selects.
func (p *Pipeline) selectCandidates(ctx context.Context, logger *slog.Logger, from, to time.Time, displayAttributes []string, postImageURL string) []domain.Candidate {
	published, err := p.ledger.PublishedSKUs(ctx)
	if err != nil {
		logger.Error("load published skus", "error", err)
		return nil
	}

	priceAttribute, err := p.settings.PriceAttribute(ctx)
	if err != nil {
		logger.Error("read price attribute", "error", err)
		return nil
	}

	products, err := p.catalog.ProductsCreatedBetween(ctx, from, to,
		customAttributeCodes(displayAttributes, priceAttribute), published)
	if err != nil {
		logger.Error("query catalog", "error", err)
		return nil
	}

	scheduledAt := p.now()
	candidates := make([]domain.Candidate, 0, len(products))
	for _, product := range products {
		candidate, err := p.resolveCandidate(product, priceAttribute)
		if err != nil {
			logger.Error("resolve candidate", "sku", product.SKU, "error", err)
			continue
		}

		rec := &domain.PublicationRecord{
			ID:          p.newID(),
			SKU:         product.SKU,
			ProductName: product.Name,
			ProductType: product.TypeID,
			ImageURL:    postImageURL,
			Status:      domain.StatusPending,
			ScheduledAt: scheduledAt,
		}
		if err := p.ledger.Create(ctx, rec); err != nil {
			logger.Error("create pending record", "sku", product.SKU, "error", err)
			continue
		}

		candidate.RecordID = rec.ID
		candidates = append(candidates, candidate)
	}

	return candidates
}

func (p *Pipeline) resolveCandidate(product domain.CatalogProduct, priceAttribute string) (domain.Candidate, error) {
	description, err := stripHTML(product.ShortDescription)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("strip description: %w", err)
	}
	if description == "" {
		description = product.Name
	}

	return domain.Candidate{
		SKU:         product.SKU,
		Name:        product.Name,
		URL:         productURL(p.storeBaseURL, product.URLKey),
		Description: description,
		Price:       resolvePrice(product, priceAttribute),
		Attributes:  product.Attributes,
	}, nil
}

// resolvePrice prefers the configured price attribute and falls back to
// the catalog's computed final price. Zero means "no price".
func resolvePrice(product domain.CatalogProduct, priceAttribute string) float64 {
	if priceAttribute != "" {
		for _, attr := range product.Attributes {
			if attr.Code != priceAttribute {
				continue
			}
			if value, err := strconv.ParseFloat(strings.TrimSpace(attr.Value), 64); err == nil && value != 0 {
				return value
			}
		}
	}
	return product.FinalPrice
}

// customAttributeCodes filters the display selection down to codes that
// must be fetched from the catalog, adding the price attribute.
func customAttributeCodes(displayAttributes []string, priceAttribute string) []string {
	codes := make([]string, 0, len(displayAttributes)+1)
	seen := map[string]struct{}{}
	for _, code := range displayAttributes {
		if _, pseudo := pseudoAttributes[code]; pseudo {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	if priceAttribute != "" {
		if _, pseudo := pseudoAttributes[priceAttribute]; !pseudo {
			if _, dup := seen[priceAttribute]; !dup {
				codes = append(codes, priceAttribute)
			}
		}
	}
	return codes
}

func productURL(baseURL, urlKey string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(urlKey, "/")
}

// stripHTML flattens short descriptions that carry markup into plain
// text with collapsed whitespace.
func stripHTML(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "<") {
		return strings.Join(strings.Fields(raw), " "), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
