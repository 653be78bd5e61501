package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	if err := store.Put(ctx, "run-1/outcome.json", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "run-1/segments.csv", []byte("id\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "run-2/outcome.json", []byte(`{}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := store.Get(ctx, "run-1/outcome.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Unexpected content %q", data)
	}

	keys, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"run-1/outcome.json", "run-1/segments.csv"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Expected %v, got %v", want, keys)
	}

	keys, err = store.List(ctx, "missing")
	if err != nil || len(keys) != 0 {
		t.Errorf("Listing a missing prefix should be empty, got %v, %v", keys, err)
	}
}

func TestLocalStoreNotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Get(context.Background(), "nope.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	for _, key := range []string{"../outside", "/etc/passwd", "", "a/../../b"} {
		if err := store.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Key %q should be rejected", key)
		}
	}
}

func TestLocalStoreHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewLocalStore(t.TempDir())
	if err := store.Put(ctx, "a.json", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		target string
		want   Location
		err    bool
	}{
		{"out", Location{Dir: "out"}, false},
		{"s3://bucket", Location{Bucket: "bucket"}, false},
		{"s3://bucket/runs/2025/", Location{Bucket: "bucket", Prefix: "runs/2025"}, false},
		{"s3:///prefix", Location{}, true},
		{"", Location{}, true},
	}

	for _, tt := range tests {
		got, err := ParseLocation(tt.target)
		if tt.err {
			if err == nil {
				t.Errorf("%q: expected error", tt.target)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.target, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %+v, got %+v", tt.target, tt.want, got)
		}
	}
}
