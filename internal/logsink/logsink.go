// Package logsink streams structured logs to an Azure append blob as JSON
// lines, batched on a short ticker so a chatty generation flow doesn't turn
// into one storage round trip per line.
package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

type Config struct {
	AccountName string
	AccountKey  string
	Container   string
	BlobName    string        // defaults to the hostname
	FlushEvery  time.Duration // defaults to 2s
	MinLevel    slog.Level
}

type Handler struct {
	cfg    Config
	blob   *appendblob.Client
	lines  chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex // guards closed and the send into lines
	closed bool
}

func New(ctx context.Context, cfg Config) (*Handler, error) {
	if cfg.AccountName == "" || cfg.AccountKey == "" || cfg.Container == "" {
		return nil, errors.New("logsink needs account name, key and container")
	}
	if cfg.BlobName == "" {
		cfg.BlobName, _ = os.Hostname()
		cfg.BlobName += ".jsonl"
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}

	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, err
	}
	// BlobName may contain slashes for per-env prefixes, leave it unescaped.
	blobURL := "https://" + cfg.AccountName + ".blob.core.windows.net/" +
		url.PathEscape(cfg.Container) + "/" + cfg.BlobName
	blob, err := appendblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
	if err != nil {
		return nil, err
	}
	if _, err := blob.Create(ctx, nil); err != nil && !bloberror.HasCode(err, bloberror.BlobAlreadyExists) {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handler{
		cfg:    cfg,
		blob:   blob,
		lines:  make(chan []byte, 1024),
		ctx:    ctx,
		cancel: cancel,
	}
	h.wg.Add(1)
	go h.flushLoop()
	return h, nil
}

func (h *Handler) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.lines)
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()
	return nil
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.MinLevel
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ev := make(map[string]any, r.NumAttrs()+3)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ev["ts"] = ts.UTC().Format(time.RFC3339Nano)
	ev["level"] = r.Level.String()
	ev["msg"] = r.Message

	r.Attrs(func(a slog.Attr) bool {
		a.Value = a.Value.Resolve()
		if a.Value.Kind() == slog.KindGroup {
			m := map[string]any{}
			for _, ga := range a.Value.Group() {
				ga.Value = ga.Value.Resolve()
				m[ga.Key] = ga.Value.Any()
			}
			ev[a.Key] = m
		} else {
			ev[a.Key] = a.Value.Any()
		}
		return true
	})

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return err
	}

	// the lock pairs the closed check with the send so Close can never
	// close the channel between them
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("logsink closed")
	}
	select {
	case h.lines <- bytes.Clone(b.Bytes()):
		return nil
	case <-h.ctx.Done():
		return h.ctx.Err()
	}
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &withAttrs{Handler: h, attrs: attrs}
}

// groups are flattened, per-request attrs cover what we need
func (h *Handler) WithGroup(string) slog.Handler { return h }

func (h *Handler) flushLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.cfg.FlushEvery)
	defer ticker.Stop()

	var buf []byte
	flush := func() {
		if len(buf) == 0 {
			return
		}
		_, _ = h.blob.AppendBlock(context.WithoutCancel(h.ctx), nopCloser{bytes.NewReader(buf)}, nil)
		buf = buf[:0]
	}

	for {
		select {
		case line, ok := <-h.lines:
			if !ok {
				flush()
				return
			}
			buf = append(buf, line...)
		case <-ticker.C:
			flush()
		case <-h.ctx.Done():
			flush()
			return
		}
	}
}

type withAttrs struct {
	slog.Handler
	attrs []slog.Attr
}

func (w *withAttrs) Handle(ctx context.Context, r slog.Record) error {
	r2 := r
	r2.AddAttrs(w.attrs...)
	return w.Handler.Handle(ctx, r2)
}

type nopCloser struct{ io.ReadSeeker }

func (nopCloser) Close() error { return nil }
