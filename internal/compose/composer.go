// Package compose renders the announcement text for a publish batch.
// Rendering is a pure function of the candidates and options so the
// exact posted message can be asserted in tests and stored for audit.
package compose

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fbsync/internal/domain"
	"fbsync/internal/settings"
)

const (
	defaultCurrency = "EUR"
	genericIcon     = "🔹"
	moneyIcon       = "💶"
	footerRule      = "━━━━━━━━━━━━━━━━━━━"
)

// Locale carries the translatable phrases of a post.
type Locale struct {
	Header string
	Yes    string
	No     string
}

// DefaultLocale is the English phrase set.
var DefaultLocale = Locale{
	Header: "🏠 New Properties Available",
	Yes:    "Yes",
	No:     "No",
}

// Options configures one rendering pass.
type Options struct {
	// Attributes lists the configured display attribute codes in the
	// merchant's order.
	Attributes []string
	// Overrides take precedence over every other label source.
	Overrides settings.LabelOverrides
	// Currency labels price values; empty falls back to EUR.
	Currency string
	// Locale defaults to DefaultLocale when zero.
	Locale Locale
}

var builtinLabels = map[string]string{
	"name":              "Product Name",
	"url":               "Details",
	"description":       "Description",
	"short_description": "Description",
	"price":             "Price",
	"special_price":     "Special Price",
	"final_price":       "Final Price",
	"sku":               "SKU",
	"weight":            "Weight",
	"created_at":        "Created Date",
	"updated_at":        "Updated Date",
}

var builtinIcons = map[string]string{
	"url":               "🔗",
	"description":       "📝",
	"short_description": "📝",
	"price":             moneyIcon,
	"special_price":     moneyIcon,
	"final_price":       moneyIcon,
	"sku":               "🏷️",
	"weight":            "⚖️",
	"created_at":        "📅",
	"updated_at":        "📅",
}

// Batch renders one combined message for the whole candidate set, in
// selector order, with a 1-based index per product.
func Batch(candidates []domain.Candidate, opts Options) string {
	locale := opts.Locale
	if locale == (Locale{}) {
		locale = DefaultLocale
	}

	var b strings.Builder
	b.WriteString(locale.Header)
	b.WriteString("\n\n")

	for i, candidate := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, candidate.Name)

		for _, code := range opts.Attributes {
			// The name already leads the block.
			if code == "name" {
				continue
			}

			value, attr := resolveValue(candidate, code, opts.Currency, locale)
			if value == "" {
				continue
			}

			fmt.Fprintf(&b, "%s %s: %s\n", iconFor(code, attr), labelFor(code, attr, opts.Overrides), value)
		}

		b.WriteString("\n")
	}

	b.WriteString(footerRule)
	return b.String()
}

func resolveValue(candidate domain.Candidate, code, currency string, locale Locale) (string, *domain.AttributeValue) {
	switch code {
	case "url":
		return candidate.URL, nil
	case "description", "short_description":
		return candidate.Description, nil
	case "price", "special_price", "final_price":
		return formatPrice(candidate.Price, currency), nil
	}

	for i := range candidate.Attributes {
		attr := &candidate.Attributes[i]
		if attr.Code != code {
			continue
		}
		return formatAttribute(attr, currency, locale), attr
	}

	return "", nil
}

func formatAttribute(attr *domain.AttributeValue, currency string, locale Locale) string {
	raw := strings.TrimSpace(attr.Value)
	if raw == "" {
		return ""
	}

	switch attr.Input {
	case domain.InputPrice:
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		return formatPrice(value, currency)
	case domain.InputBoolean:
		if isTruthy(raw) {
			return locale.Yes
		}
		return locale.No
	case domain.InputDate:
		return formatDate(raw)
	}

	return raw
}

func formatPrice(value float64, currency string) string {
	// Zero means the selector found no usable price.
	if value == 0 {
		return ""
	}
	if currency == "" {
		currency = defaultCurrency
	}
	return fmt.Sprintf("%.2f %s", value, currency)
}

func isTruthy(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func formatDate(raw string) string {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return raw
}

func iconFor(code string, attr *domain.AttributeValue) string {
	// Anything priced gets the money icon no matter how it is named.
	if attr != nil && attr.Input == domain.InputPrice {
		return moneyIcon
	}
	if icon, ok := builtinIcons[code]; ok {
		return icon
	}
	return genericIcon
}

func labelFor(code string, attr *domain.AttributeValue, overrides settings.LabelOverrides) string {
	if label, ok := overrides.Lookup(code); ok {
		return label
	}
	if label, ok := builtinLabels[code]; ok {
		return label
	}
	if attr != nil && attr.FrontendLabel != "" {
		return attr.FrontendLabel
	}
	return humanize(code)
}

func humanize(code string) string {
	words := strings.Split(strings.ReplaceAll(code, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
