package logsink

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// newTestHandler skips New so no blob client or flush loop is involved; the
// enqueue path under test never touches storage.
func newTestHandler() *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		lines:  make(chan []byte, 128),
		ctx:    ctx,
		cancel: cancel,
	}
}

func record(msg string) slog.Record {
	return slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
}

func TestHandleAfterClose(t *testing.T) {
	h := newTestHandler()
	if err := h.Handle(context.Background(), record("before")); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Handle(context.Background(), record("after")); err == nil {
		t.Error("handle after close should fail, not panic")
	}
	if err := h.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestCloseRacesHandle(t *testing.T) {
	h := newTestHandler()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Handle(context.Background(), record("racing"))
		}()
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	wg.Wait()
}

func TestEnabledHonorsMinLevel(t *testing.T) {
	h := &Handler{cfg: Config{MinLevel: slog.LevelWarn}}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be filtered below a warn floor")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should pass a warn floor")
	}
}
