package facebook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fbsync/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "v24.0", server.Client()), server
}

func TestPostPhotoSuccess(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotForm map[string]string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"url":          r.PostFormValue("url"),
			"caption":      r.PostFormValue("caption"),
			"access_token": r.PostFormValue("access_token"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123456"}`))
	})

	postID, err := client.PostPhoto(context.Background(), "page-1", "token-1", domain.PhotoPost{
		ImageURL: "https://cdn.example.org/banner.png",
		Caption:  "hello",
	})
	if err != nil {
		t.Fatalf("post photo: %v", err)
	}

	if postID != "123456" {
		t.Fatalf("expected post id 123456, got %q", postID)
	}
	if gotPath != "/v24.0/page-1/photos" {
		t.Fatalf("unexpected endpoint path %q", gotPath)
	}
	if gotForm["url"] != "https://cdn.example.org/banner.png" {
		t.Fatalf("unexpected url field %q", gotForm["url"])
	}
	if gotForm["caption"] != "hello" {
		t.Fatalf("unexpected caption field %q", gotForm["caption"])
	}
	if gotForm["access_token"] != "token-1" {
		t.Fatalf("unexpected access_token field %q", gotForm["access_token"])
	}
}

func TestPostPhotoPlatformError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth token"}}`))
	})

	_, err := client.PostPhoto(context.Background(), "page-1", "token-1", domain.PhotoPost{})
	if err == nil {
		t.Fatalf("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "Invalid OAuth token" {
		t.Fatalf("expected platform message, got %q", apiErr.Message)
	}
	if err.Error() != "Invalid OAuth token" {
		t.Fatalf("Error() must be the bare platform message, got %q", err.Error())
	}
}

func TestPostPhotoInvalidJSON(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	})

	_, err := client.PostPhoto(context.Background(), "page-1", "token-1", domain.PhotoPost{})
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "invalid JSON response from Facebook: <html>gateway timeout</html>"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestPostPhotoMissingID(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := client.PostPhoto(context.Background(), "page-1", "token-1", domain.PhotoPost{})
	if err == nil {
		t.Fatalf("expected error for missing post id")
	}
}
