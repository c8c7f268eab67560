package ports

import (
	"context"
	"time"

	"fbsync/internal/domain"
)

// SettingsStore is the key-value configuration surface backing the
// typed settings provider. Paths are dotted config keys.
type SettingsStore interface {
	Get(ctx context.Context, path string) (value string, ok bool, err error)
	Set(ctx context.Context, path, value string) error
	Delete(ctx context.Context, path string) error
}

// Ledger persists publication records and answers the exclusion set.
type Ledger interface {
	Create(ctx context.Context, rec *domain.PublicationRecord) error
	Save(ctx context.Context, rec *domain.PublicationRecord) error
	FindByID(ctx context.Context, id string) (*domain.PublicationRecord, error)
	FindBySKU(ctx context.Context, sku string) (*domain.PublicationRecord, error)
	PublishedSKUs(ctx context.Context) ([]string, error)
	Query(ctx context.Context, filter domain.RecordFilter) ([]domain.PublicationRecord, error)
}

// CatalogReader queries the platform catalog for enabled, visible
// products created inside the window, newest first, with the requested
// attribute codes resolved. SKUs in exclude are filtered out in storage.
type CatalogReader interface {
	ProductsCreatedBetween(ctx context.Context, from, to time.Time, attributeCodes []string, exclude []string) ([]domain.CatalogProduct, error)
}

// Publisher performs the single outbound photo post and returns the
// remote post identifier.
type Publisher interface {
	PostPhoto(ctx context.Context, pageID, accessToken string, post domain.PhotoPost) (string, error)
}

// Scheduler controls when sync runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
