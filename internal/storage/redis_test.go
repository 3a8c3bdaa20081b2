package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMarkSavedAndWasSaved(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	saved, err := store.WasSaved(ctx, "42118861")
	if err != nil {
		t.Fatal(err)
	}
	if saved {
		t.Error("unseen key reported saved")
	}

	if err := store.MarkSaved(ctx, "42118861", time.Hour); err != nil {
		t.Fatal(err)
	}
	saved, err = store.WasSaved(ctx, "42118861")
	if err != nil {
		t.Fatal(err)
	}
	if !saved {
		t.Error("marked key not reported saved")
	}

	// The mark must expire with its TTL.
	mr.FastForward(2 * time.Hour)
	saved, err = store.WasSaved(ctx, "42118861")
	if err != nil {
		t.Fatal(err)
	}
	if saved {
		t.Error("expired key still reported saved")
	}
}
