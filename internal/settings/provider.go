// Package settings exposes typed accessors over the merchant-facing
// key-value configuration store, mirroring the admin "configuration"
// section of the storefront.
package settings

import (
	"context"
	"fmt"
	"strings"

	"fbsync/internal/ports"
)

// Config paths in the settings store.
const (
	KeyEnabled           = "configuration/general/enable_fb_sync"
	KeyPageID            = "configuration/general/fb_page_id"
	KeyAccessToken       = "configuration/general/fb_access_token"
	KeyPostImage         = "configuration/general/fb_post_image"
	KeyDisplayAttributes = "configuration/general/fb_custom_attributes"
	KeyPriceAttribute    = "configuration/general/fb_price_attribute"
	KeyCurrency          = "configuration/general/fb_currency"
	KeyLabelOverrides    = "configuration/general/fb_attribute_labels"

	mediaUploadPath = "media/facebook_sync"
)

// DefaultDisplayAttributes is used when the merchant never selected any.
var DefaultDisplayAttributes = []string{"name", "price", "url"}

// Provider reads typed values through a SettingsStore.
type Provider struct {
	store        ports.SettingsStore
	encryptor    *Encryptor
	storeBaseURL string
}

// NewProvider wires the backing store, secret encryptor and the
// storefront base URL used to absolutize relative image paths.
func NewProvider(store ports.SettingsStore, encryptor *Encryptor, storeBaseURL string) *Provider {
	return &Provider{
		store:        store,
		encryptor:    encryptor,
		storeBaseURL: strings.TrimRight(storeBaseURL, "/"),
	}
}

// Enabled reports whether the sync cron should run at all. Default false.
func (p *Provider) Enabled(ctx context.Context) (bool, error) {
	raw, ok, err := p.store.Get(ctx, KeyEnabled)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", KeyEnabled, err)
	}
	if !ok {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	}
	return false, nil
}

// PageID returns the target page identifier, empty when unconfigured.
func (p *Provider) PageID(ctx context.Context) (string, error) {
	raw, _, err := p.store.Get(ctx, KeyPageID)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyPageID, err)
	}
	return strings.TrimSpace(raw), nil
}

// AccessToken decrypts the stored token and strips quote and whitespace
// characters that storage round-trips have been seen to introduce.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	raw, ok, err := p.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyAccessToken, err)
	}
	if !ok || raw == "" {
		return "", nil
	}

	token, err := p.encryptor.Decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("decrypt access token: %w", err)
	}

	return sanitizeSecret(token), nil
}

// SaveAccessToken encrypts and stores the token.
func (p *Provider) SaveAccessToken(ctx context.Context, token string) error {
	encrypted, err := p.encryptor.Encrypt(sanitizeSecret(token))
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	return p.store.Set(ctx, KeyAccessToken, encrypted)
}

// PostImageURL resolves the configured post image to an absolute URL.
// Empty when no image was configured.
func (p *Provider) PostImageURL(ctx context.Context) (string, error) {
	raw, _, err := p.store.Get(ctx, KeyPostImage)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyPostImage, err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw, nil
	}

	return fmt.Sprintf("%s/%s/%s", p.storeBaseURL, mediaUploadPath, strings.TrimLeft(raw, "/")), nil
}

// DisplayAttributes returns the ordered attribute codes selected for the
// post, falling back to DefaultDisplayAttributes when unset.
func (p *Provider) DisplayAttributes(ctx context.Context) ([]string, error) {
	raw, ok, err := p.store.Get(ctx, KeyDisplayAttributes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyDisplayAttributes, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return append([]string(nil), DefaultDisplayAttributes...), nil
	}

	return splitAttributeList(raw), nil
}

// SaveDisplayAttributes normalizes and stores the selection. The
// product URL is always kept in the list so posts stay actionable.
func (p *Provider) SaveDisplayAttributes(ctx context.Context, codes []string) error {
	normalized := normalizeAttributeList(codes)
	if len(normalized) == 0 {
		return p.store.Delete(ctx, KeyDisplayAttributes)
	}
	return p.store.Set(ctx, KeyDisplayAttributes, strings.Join(normalized, ","))
}

// PriceAttribute names the catalog attribute used as the price source,
// empty meaning "use the catalog's computed final price".
func (p *Provider) PriceAttribute(ctx context.Context) (string, error) {
	raw, _, err := p.store.Get(ctx, KeyPriceAttribute)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyPriceAttribute, err)
	}
	return strings.TrimSpace(raw), nil
}

// Currency returns the currency code for price rendering, empty meaning
// the composer default.
func (p *Provider) Currency(ctx context.Context) (string, error) {
	raw, _, err := p.store.Get(ctx, KeyCurrency)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyCurrency, err)
	}

	code := strings.TrimSpace(raw)
	if strings.EqualFold(code, "store") {
		return "", nil
	}
	return code, nil
}

// LabelOverrides parses the stored attribute|label lines into an ordered
// override set.
func (p *Provider) LabelOverrides(ctx context.Context) (LabelOverrides, error) {
	raw, _, err := p.store.Get(ctx, KeyLabelOverrides)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyLabelOverrides, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	overrides, err := ParseLabelOverrides(raw)
	if err != nil {
		return nil, fmt.Errorf("stored label overrides are invalid: %w", err)
	}
	return overrides, nil
}

// SaveLabelOverrides validates and stores the override text. A single
// malformed line rejects the whole write.
func (p *Provider) SaveLabelOverrides(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return p.store.Delete(ctx, KeyLabelOverrides)
	}

	overrides, err := ParseLabelOverrides(text)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, KeyLabelOverrides, overrides.Serialize())
}

func sanitizeSecret(value string) string {
	replacer := strings.NewReplacer(`"`, "", `'`, "", "\n", "", "\r", "")
	return strings.TrimSpace(replacer.Replace(value))
}

func splitAttributeList(raw string) []string {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func normalizeAttributeList(codes []string) []string {
	seen := map[string]struct{}{}
	normalized := make([]string, 0, len(codes)+1)
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}

	if len(normalized) > 0 {
		if _, ok := seen["url"]; !ok {
			normalized = append(normalized, "url")
		}
	}
	return normalized
}
