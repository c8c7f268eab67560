package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"fbsync/internal/domain"
	"fbsync/internal/ports"
)

const ledgerTable = "fb_products"

var ledgerColumns = []string{
	"id", "sku", "product_name", "product_type", "image_url", "status",
	"scheduled_at", "published_at", "post_id", "message", "error_message",
	"created_at", "updated_at",
}

// LedgerRepository persists publication records in Postgres.
type LedgerRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.Ledger = (*LedgerRepository)(nil)

// NewLedgerRepository wires a sql.DB implementation.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:     time.Now,
	}
}

// Create inserts a new record, stamping housekeeping timestamps.
func (r *LedgerRepository) Create(ctx context.Context, rec *domain.PublicationRecord) error {
	now := r.now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query, args, err := insertRecordQuery(r.builder, rec).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Save updates an existing record's mutable fields by id.
func (r *LedgerRepository) Save(ctx context.Context, rec *domain.PublicationRecord) error {
	rec.UpdatedAt = r.now().UTC()

	query, args, err := updateRecordQuery(r.builder, rec).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("record %s does not exist", rec.ID)
	}
	return nil
}

// FindByID loads one record or fails.
func (r *LedgerRepository) FindByID(ctx context.Context, id string) (*domain.PublicationRecord, error) {
	query, args, err := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", id, err)
	}
	return rec, nil
}

// FindBySKU returns the newest record for a SKU.
func (r *LedgerRepository) FindBySKU(ctx context.Context, sku string) (*domain.PublicationRecord, error) {
	query, args, err := r.builder.Select(ledgerColumns...).
		From(ledgerTable).
		Where(sq.Eq{"sku": sku}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("load record for sku %s: %w", sku, err)
	}
	return rec, nil
}

// PublishedSKUs returns the exclusion set for the selector.
func (r *LedgerRepository) PublishedSKUs(ctx context.Context) ([]string, error) {
	query, args, err := publishedSKUsQuery(r.builder).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query published skus: %w", err)
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, fmt.Errorf("scan sku: %w", err)
		}
		skus = append(skus, sku)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return skus, nil
}

// Query lists records matching the filter, oldest scheduled first.
func (r *LedgerRepository) Query(ctx context.Context, filter domain.RecordFilter) ([]domain.PublicationRecord, error) {
	query, args, err := selectRecordsQuery(r.builder, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.PublicationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}

// CleanupDuplicateSKUs removes older duplicate rows per SKU, keeping the
// newest. SKU uniqueness is intentionally not enforced by a storage
// constraint; this is the administrative cleanup for legacy data.
func (r *LedgerRepository) CleanupDuplicateSKUs(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM fb_products a
		USING fb_products b
		WHERE a.sku = b.sku AND a.created_at < b.created_at`)
	if err != nil {
		return 0, fmt.Errorf("delete duplicates: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func insertRecordQuery(builder sq.StatementBuilderType, rec *domain.PublicationRecord) sq.InsertBuilder {
	return builder.Insert(ledgerTable).
		Columns(ledgerColumns...).
		Values(rec.ID, rec.SKU, rec.ProductName, rec.ProductType, rec.ImageURL,
			string(rec.Status), rec.ScheduledAt, rec.PublishedAt,
			nullable(rec.PostID), nullable(rec.Message), nullable(rec.ErrorMessage),
			rec.CreatedAt, rec.UpdatedAt)
}

func updateRecordQuery(builder sq.StatementBuilderType, rec *domain.PublicationRecord) sq.UpdateBuilder {
	return builder.Update(ledgerTable).
		Set("status", string(rec.Status)).
		Set("published_at", rec.PublishedAt).
		Set("post_id", nullable(rec.PostID)).
		Set("message", nullable(rec.Message)).
		Set("error_message", nullable(rec.ErrorMessage)).
		Set("updated_at", rec.UpdatedAt).
		Where(sq.Eq{"id": rec.ID})
}

func publishedSKUsQuery(builder sq.StatementBuilderType) sq.SelectBuilder {
	return builder.Select("sku").
		From(ledgerTable).
		Where(sq.Eq{"status": string(domain.StatusPublished)})
}

func selectRecordsQuery(builder sq.StatementBuilderType, filter domain.RecordFilter) sq.SelectBuilder {
	query := builder.Select(ledgerColumns...).
		From(ledgerTable).
		OrderBy("scheduled_at ASC")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		query = query.Where(sq.Eq{"status": statuses})
	}
	if filter.SKU != "" {
		query = query.Where(sq.Eq{"sku": filter.SKU})
	}
	if filter.ScheduledBefore != nil {
		query = query.Where(sq.LtOrEq{"scheduled_at": *filter.ScheduledBefore})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	return query
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.PublicationRecord, error) {
	var (
		rec          domain.PublicationRecord
		status       string
		publishedAt  sql.NullTime
		postID       sql.NullString
		message      sql.NullString
		errorMessage sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.SKU, &rec.ProductName, &rec.ProductType, &rec.ImageURL,
		&status, &rec.ScheduledAt, &publishedAt, &postID, &message, &errorMessage,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Status = domain.Status(status)
	if publishedAt.Valid {
		at := publishedAt.Time
		rec.PublishedAt = &at
	}
	rec.PostID = postID.String
	rec.Message = message.String
	rec.ErrorMessage = errorMessage.String

	return &rec, nil
}
