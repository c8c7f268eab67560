package storage

import "testing"

func TestUpsertSettingQuery(t *testing.T) {
	t.Parallel()

	query, args, err := upsertSettingQuery(testBuilder, "configuration/general/fb_page_id", "page-1").ToSql()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "INSERT INTO fb_settings (path,value) VALUES ($1,$2) " +
		"ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}
	if args[0] != "configuration/general/fb_page_id" || args[1] != "page-1" {
		t.Fatalf("unexpected args %v", args)
	}
}
