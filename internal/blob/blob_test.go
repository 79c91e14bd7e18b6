package blob

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/adserve-labs/adengine/internal/models"
)

func setupStore(t *testing.T) *RedisStore {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	return NewRedisStore(client, 3, 16, []string{"image/png", "image/jpeg"})
}

func pngImage(name string) Image {
	return Image{Filename: name, ContentType: "image/png", Data: []byte("png-bytes")}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	campaignID := uuid.New()

	if err := store.Put(ctx, campaignID, pngImage("banner.png")); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, campaignID, "banner.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ContentType != "image/png" || !bytes.Equal(got.Data, []byte("png-bytes")) {
		t.Fatalf("unexpected image: %+v", got)
	}
}

func TestPutRejectsBadPayloads(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	campaignID := uuid.New()

	cases := []struct {
		name string
		img  Image
	}{
		{"empty filename", Image{ContentType: "image/png", Data: []byte("x")}},
		{"oversized", Image{Filename: "big.png", ContentType: "image/png", Data: bytes.Repeat([]byte("x"), 17)}},
		{"wrong type", Image{Filename: "page.html", ContentType: "text/html", Data: []byte("x")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(ctx, campaignID, tc.img)
			if models.KindOf(err) != models.KindPayload {
				t.Fatalf("expected payload error, got %v", err)
			}
		})
	}
}

func TestPutEnforcesBound(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	campaignID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := store.Put(ctx, campaignID, pngImage(fmt.Sprintf("img-%d.png", i))); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}

	if err := store.Put(ctx, campaignID, pngImage("one-too-many.png")); models.KindOf(err) != models.KindPayload {
		t.Fatalf("expected bound error, got %v", err)
	}

	// overwriting an existing filename does not count against the bound
	if err := store.Put(ctx, campaignID, pngImage("img-0.png")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), uuid.New(), "nope.png")
	if models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	campaignID := uuid.New()

	if err := store.Put(ctx, campaignID, pngImage("banner.png")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, campaignID, "banner.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, campaignID, "banner.png"); models.KindOf(err) != models.KindNotFound {
		t.Fatalf("double delete: expected not found, got %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	campaignID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := store.Put(ctx, campaignID, pngImage(fmt.Sprintf("img-%d.png", i))); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	if err := store.DeleteAll(ctx, campaignID); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	names, err := store.List(ctx, campaignID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list, got %v", names)
	}
}
