package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"fbsync/internal/ports"
)

const settingsTable = "fb_settings"

// SettingsStore is the Postgres key-value configuration surface.
type SettingsStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SettingsStore = (*SettingsStore)(nil)

// NewSettingsStore wires a sql.DB implementation.
func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Get returns the stored value and whether the path exists.
func (s *SettingsStore) Get(ctx context.Context, path string) (string, bool, error) {
	query, args, err := s.builder.Select("value").
		From(settingsTable).
		Where(sq.Eq{"path": path}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", path, err)
	}

	return value, true, nil
}

// Set upserts the value for a path.
func (s *SettingsStore) Set(ctx context.Context, path, value string) error {
	query, args, err := upsertSettingQuery(s.builder, path, value).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write setting %s: %w", path, err)
	}
	return nil
}

// Delete removes the path; deleting an absent path is not an error.
func (s *SettingsStore) Delete(ctx context.Context, path string) error {
	query, args, err := s.builder.Delete(settingsTable).
		Where(sq.Eq{"path": path}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete setting %s: %w", path, err)
	}
	return nil
}

func upsertSettingQuery(builder sq.StatementBuilderType, path, value string) sq.InsertBuilder {
	return builder.Insert(settingsTable).
		Columns("path", "value").
		Values(path, value).
		Suffix("ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()")
}
