package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"fbsync/internal/domain"
	"fbsync/internal/ports"
)

// Catalog status/visibility codes as stored by the platform.
const (
	productStatusEnabled   = 1
	visibilityNotVisible   = 1
	defaultCatalogPageSize = 200
	catalogProductsTable   = "catalog_products"
	catalogAttributesTable = "catalog_attributes"
	catalogAttrValuesTable = "catalog_attribute_values"
)

// CatalogReader reads the platform's product tables. The catalog schema
// belongs to the platform; this side only queries it.
type CatalogReader struct {
	db       *sql.DB
	builder  sq.StatementBuilderType
	pageSize int
}

var _ ports.CatalogReader = (*CatalogReader)(nil)

// NewCatalogReader wires a sql.DB implementation; pageSize defaults to 200.
func NewCatalogReader(db *sql.DB) *CatalogReader {
	return &CatalogReader{
		db:       db,
		builder:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		pageSize: defaultCatalogPageSize,
	}
}

// ProductsCreatedBetween pages through enabled, visible products created
// inside [from, to], newest first, excluding the given SKUs, and resolves
// the requested custom attribute codes for each page.
func (r *CatalogReader) ProductsCreatedBetween(ctx context.Context, from, to time.Time, attributeCodes, exclude []string) ([]domain.CatalogProduct, error) {
	var products []domain.CatalogProduct

	for offset := 0; ; offset += r.pageSize {
		page, err := r.fetchPage(ctx, from, to, exclude, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		if len(attributeCodes) > 0 {
			if err := r.attachAttributes(ctx, page, attributeCodes); err != nil {
				return nil, err
			}
		}

		products = append(products, page...)
		if len(page) < r.pageSize {
			break
		}
	}

	return products, nil
}

func (r *CatalogReader) fetchPage(ctx context.Context, from, to time.Time, exclude []string, offset int) ([]domain.CatalogProduct, error) {
	query, args, err := productPageQuery(r.builder, from, to, exclude, uint64(r.pageSize), uint64(offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var page []domain.CatalogProduct
	for rows.Next() {
		var (
			product          domain.CatalogProduct
			shortDescription sql.NullString
			image            sql.NullString
			finalPrice       sql.NullFloat64
		)
		err := rows.Scan(&product.SKU, &product.Name, &product.TypeID, &product.URLKey,
			&shortDescription, &image, &finalPrice, &product.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		product.ShortDescription = shortDescription.String
		product.Image = image.String
		product.FinalPrice = finalPrice.Float64
		page = append(page, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return page, nil
}

// attachAttributes loads the requested attribute values for one page of
// products and attaches them in the requested code order.
func (r *CatalogReader) attachAttributes(ctx context.Context, page []domain.CatalogProduct, codes []string) error {
	skus := make([]string, len(page))
	for i, product := range page {
		skus[i] = product.SKU
	}

	query, args, err := attributeValuesQuery(r.builder, codes, skus).ToSql()
	if err != nil {
		return fmt.Errorf("build attribute query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query attributes: %w", err)
	}
	defer rows.Close()

	values := map[string]map[string]domain.AttributeValue{}
	for rows.Next() {
		var (
			sku   string
			attr  domain.AttributeValue
			label sql.NullString
			input string
		)
		if err := rows.Scan(&sku, &attr.Code, &label, &input, &attr.Value); err != nil {
			return fmt.Errorf("scan attribute: %w", err)
		}
		attr.FrontendLabel = label.String
		attr.Input = domain.AttributeInput(input)

		if values[sku] == nil {
			values[sku] = map[string]domain.AttributeValue{}
		}
		values[sku][attr.Code] = attr
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration: %w", err)
	}

	for i := range page {
		bySKU := values[page[i].SKU]
		if bySKU == nil {
			continue
		}
		for _, code := range codes {
			if attr, ok := bySKU[code]; ok {
				page[i].Attributes = append(page[i].Attributes, attr)
			}
		}
	}

	return nil
}

func productPageQuery(builder sq.StatementBuilderType, from, to time.Time, exclude []string, limit, offset uint64) sq.SelectBuilder {
	query := builder.Select(
		"p.sku", "p.name", "p.type_id", "p.url_key",
		"p.short_description", "p.image", "p.final_price", "p.created_at").
		From(catalogProductsTable + " p").
		Where(sq.Eq{"p.status": productStatusEnabled}).
		Where(sq.NotEq{"p.visibility": visibilityNotVisible}).
		Where(sq.GtOrEq{"p.created_at": from}).
		Where(sq.LtOrEq{"p.created_at": to}).
		OrderBy("p.created_at DESC", "p.sku ASC").
		Limit(limit).
		Offset(offset)

	if len(exclude) > 0 {
		query = query.Where(sq.Expr("NOT (p.sku = ANY(?))", pq.StringArray(exclude)))
	}
	return query
}

func attributeValuesQuery(builder sq.StatementBuilderType, codes, skus []string) sq.SelectBuilder {
	return builder.Select("v.sku", "v.code", "a.frontend_label", "a.frontend_input", "v.value").
		From(catalogAttrValuesTable + " v").
		Join(catalogAttributesTable + " a ON a.code = v.code").
		Where(sq.Expr("v.code = ANY(?)", pq.StringArray(codes))).
		Where(sq.Expr("v.sku = ANY(?)", pq.StringArray(skus)))
}
