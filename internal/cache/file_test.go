package cache

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestFileCacheRoundTrip(t *testing.T) {
	fc := NewFileCache(t.TempDir())
	ctx := context.Background()

	if _, err := fc.Get(ctx, "state/p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}

	if err := fc.Put(ctx, "state/p1", `{"screen":"LANDING"}`, Unconditional()); err != nil {
		t.Fatal(err)
	}
	rc, err := fc.Get(ctx, "state/p1")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != `{"screen":"LANDING"}` {
		t.Errorf("got %q", got)
	}

	exists, err := fc.Exists(ctx, "state/p1")
	if err != nil || !exists {
		t.Errorf("exists = %v, %v", exists, err)
	}
	exists, err = fc.Exists(ctx, "state/p2")
	if err != nil || exists {
		t.Errorf("missing exists = %v, %v", exists, err)
	}
}

func TestFileCachePutIfNoneMatch(t *testing.T) {
	fc := NewFileCache(t.TempDir())
	ctx := context.Background()

	if err := fc.Put(ctx, "k", "first", IfNoneMatch()); err != nil {
		t.Fatal(err)
	}
	if err := fc.Put(ctx, "k", "second", IfNoneMatch()); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("conditional overwrite = %v, want ErrAlreadyExists", err)
	}
	if err := fc.Put(ctx, "k", "second", Unconditional()); err != nil {
		t.Fatal(err)
	}
}

func TestFileCacheList(t *testing.T) {
	fc := NewFileCache(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"state/b", "state/a", "theme/a"} {
		if err := fc.Put(ctx, key, "x", Unconditional()); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := fc.List(ctx, "state/", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("list = %v", keys)
	}
}

func TestFileCacheListMissingDir(t *testing.T) {
	fc := NewFileCache(t.TempDir() + "/never-created")
	keys, err := fc.List(context.Background(), "", "")
	if err != nil {
		t.Fatalf("list on missing dir: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("keys = %v", keys)
	}
}
