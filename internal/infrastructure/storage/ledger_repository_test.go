package storage

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"

	"fbsync/internal/domain"
)

var testBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func TestPublishedSKUsQuery(t *testing.T) {
	t.Parallel()

	query, args, err := publishedSKUsQuery(testBuilder).ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT sku FROM fb_products WHERE status = $1"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}
	if len(args) != 1 || args[0] != "published" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestInsertRecordQuery(t *testing.T) {
	t.Parallel()

	scheduled := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)
	rec := &domain.PublicationRecord{
		ID:          "rec-1",
		SKU:         "VILLA-1",
		ProductName: "Seaside Villa",
		ProductType: "simple",
		ImageURL:    "https://cdn.example.org/banner.png",
		Status:      domain.StatusPending,
		ScheduledAt: scheduled,
		CreatedAt:   scheduled,
		UpdatedAt:   scheduled,
	}

	query, args, err := insertRecordQuery(testBuilder, rec).ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "INSERT INTO fb_products (id,sku,product_name,product_type,image_url,status," +
		"scheduled_at,published_at,post_id,message,error_message,created_at,updated_at) " +
		"VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}

	if len(args) != 13 {
		t.Fatalf("expected 13 args, got %d", len(args))
	}
	if args[5] != "pending" {
		t.Fatalf("expected pending status arg, got %v", args[5])
	}
	// Pending rows carry no post id, message, or error.
	for _, i := range []int{7, 8, 9, 10} {
		if arg := args[i]; arg != nil {
			if ptr, ok := arg.(*time.Time); !ok || ptr != nil {
				t.Fatalf("expected nil arg at %d, got %v", i, arg)
			}
		}
	}
}

func TestUpdateRecordQueryPublished(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 29, 6, 5, 0, 0, time.UTC)
	rec := &domain.PublicationRecord{ID: "rec-1", Status: domain.StatusPending, UpdatedAt: at}
	rec.MarkPublished("123456", "message text", at)

	query, args, err := updateRecordQuery(testBuilder, rec).ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "UPDATE fb_products SET status = $1, published_at = $2, post_id = $3, " +
		"message = $4, error_message = $5, updated_at = $6 WHERE id = $7"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}

	if args[0] != "published" || args[2] != "123456" || args[3] != "message text" {
		t.Fatalf("unexpected args %v", args)
	}
	if args[4] != nil {
		t.Fatalf("error_message must be cleared on publish, got %v", args[4])
	}
	if args[6] != "rec-1" {
		t.Fatalf("expected id arg, got %v", args[6])
	}
}

func TestUpdateRecordQueryFailed(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 29, 6, 5, 0, 0, time.UTC)
	rec := &domain.PublicationRecord{ID: "rec-2", Status: domain.StatusPending}
	rec.MarkFailed("Invalid OAuth token", at)

	_, args, err := updateRecordQuery(testBuilder, rec).ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	if args[0] != "failed" {
		t.Fatalf("expected failed status, got %v", args[0])
	}
	if args[2] != nil {
		t.Fatalf("post_id must stay null on failure, got %v", args[2])
	}
	if args[4] != "Invalid OAuth token" {
		t.Fatalf("expected failure reason, got %v", args[4])
	}
}

func TestSelectRecordsQueryFilters(t *testing.T) {
	t.Parallel()

	before := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	filter := domain.RecordFilter{
		Statuses:        []domain.Status{domain.StatusPending, domain.StatusFailed},
		SKU:             "VILLA-1",
		ScheduledBefore: &before,
		Limit:           10,
	}

	query, args, err := selectRecordsQuery(testBuilder, filter).ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT id, sku, product_name, product_type, image_url, status, " +
		"scheduled_at, published_at, post_id, message, error_message, created_at, updated_at " +
		"FROM fb_products WHERE status IN ($1,$2) AND sku = $3 AND scheduled_at <= $4 " +
		"ORDER BY scheduled_at ASC LIMIT 10"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}

func TestSelectRecordsQueryNoFilters(t *testing.T) {
	t.Parallel()

	query, args, err := selectRecordsQuery(testBuilder, domain.RecordFilter{}).ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
	want := "SELECT id, sku, product_name, product_type, image_url, status, " +
		"scheduled_at, published_at, post_id, message, error_message, created_at, updated_at " +
		"FROM fb_products ORDER BY scheduled_at ASC"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}
}
