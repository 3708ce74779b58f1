package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
)

func TestInMemoryCacheSemanticsMatchFile(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing = %v", err)
	}
	if err := c.Put(ctx, "k", "v", IfNoneMatch()); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, "k", "v2", IfNoneMatch()); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("conditional overwrite = %v", err)
	}

	rc, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "v" {
		t.Errorf("got %q", got)
	}

	keys, err := c.List(ctx, "", "")
	if err != nil || len(keys) != 1 {
		t.Errorf("list = %v, %v", keys, err)
	}
}

func TestInMemoryCacheConcurrentPuts(t *testing.T) {
	c := NewInMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Put(ctx, "savings/p", "5", Unconditional())
			_, _ = c.Exists(ctx, "savings/p")
		}()
	}
	wg.Wait()

	exists, err := c.Exists(ctx, "savings/p")
	if err != nil || !exists {
		t.Errorf("exists = %v, %v", exists, err)
	}
}
