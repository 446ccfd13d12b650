package storage

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryStorageSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage("https://cdn.example.com/")

	asset, err := store.Save(ctx, "/videos/u1/v1.mp4", "video/mp4", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if asset.Key != "videos/u1/v1.mp4" {
		t.Fatalf("unexpected key %q", asset.Key)
	}
	if asset.URL != "https://cdn.example.com/videos/u1/v1.mp4" {
		t.Fatalf("unexpected url %q", asset.URL)
	}
	if got := store.ContentType(asset.Key); got != "video/mp4" {
		t.Fatalf("unexpected content type %q", got)
	}

	if err := store.Delete(ctx, asset.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if keys := store.Keys(); len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}
}

func TestMemoryStorageInjectedFailure(t *testing.T) {
	store := NewMemoryStorage("https://cdn.example.com")
	store.FailKeys = []string{"thumbnails/"}

	if _, err := store.Save(context.Background(), "thumbnails/u1/x.png", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected injected failure")
	}
	if _, err := store.Save(context.Background(), "", "image/png", strings.NewReader("x")); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}
