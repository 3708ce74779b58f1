package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"remy/internal/ai"
	"remy/internal/app"
	"remy/internal/cache"
	"remy/internal/config"
	"remy/internal/logsink"
	"remy/internal/mail"
	"remy/internal/telemetry"
	"remy/internal/web"
)

func main() {
	var serve bool
	var addr string
	var query string
	var pantry string
	var help bool

	flag.BoolVar(&serve, "serve", false, "Run HTTP server mode")
	flag.StringVar(&addr, "addr", ":8080", "Address to bind in server mode")
	flag.StringVar(&query, "query", "", "Generate one recipe for this meal and print it")
	flag.StringVar(&pantry, "pantry", "", "Comma-separated pantry ingredients for -query")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.BoolVar(&help, "h", false, "Show help message")
	flag.Parse()

	if help {
		showHelp()
		return
	}

	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	shutdownTelemetry := setupLogging(ctx)
	defer shutdownTelemetry()

	client, err := ai.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create AI client: %v", err)
	}

	if serve {
		if err := runServer(ctx, cfg, client, addr); err != nil {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	if query == "" {
		fmt.Println("Error: provide -query for one-shot mode, or -serve for web mode")
		showHelp()
		os.Exit(1)
	}

	if err := runOnce(ctx, client, query, pantry); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// setupLogging picks the richest configured stack: OTLP bridge when an
// endpoint is set, the append-blob sink when storage creds are set, and a
// text handler on stderr otherwise.
func setupLogging(ctx context.Context) func() {
	shutdown, otelHandler, err := telemetry.Setup(ctx, "remy")
	if err != nil {
		log.Fatalf("failed to set up telemetry: %v", err)
	}
	if otelHandler != nil {
		slog.SetDefault(slog.New(otelHandler))
		return func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Printf("telemetry shutdown: %v", err)
			}
		}
	}

	if account := os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"); account != "" {
		sink, err := logsink.New(ctx, logsink.Config{
			AccountName: account,
			AccountKey:  os.Getenv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"),
			Container:   "logs",
		})
		if err != nil {
			log.Printf("append-blob log sink unavailable: %v", err)
		} else {
			slog.SetDefault(slog.New(sink))
			return func() { _ = sink.Close() }
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return func() {}
}

func runServer(ctx context.Context, cfg *config.Config, client ai.Client, addr string) error {
	store, err := cache.MakeCache(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	manager := app.NewManager(store, client)
	server := web.New(manager, client, mail.New(cfg))

	mux := http.NewServeMux()
	server.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: withMiddleware(mux),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.InfoContext(ctx, "serving remy", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runOnce generates a single recipe and prints it, no persistence involved.
func runOnce(ctx context.Context, client ai.Client, query, pantry string) error {
	var items []string
	for _, item := range strings.Split(pantry, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	recipe, err := client.GenerateRecipe(ctx, query, items)
	if err != nil {
		return fmt.Errorf("failed to generate recipe: %w", err)
	}
	r := recipe.WithDefaults()

	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	fmt.Printf("\nsafety: %d%%  hack recommended: %v\n", ai.NormalizeScore(r.SafetyScore), r.HackRecommended())
	return nil
}

func showHelp() {
	fmt.Println("Remy - pantry-to-plate cooking assistant")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  remy -serve [-addr :8080]")
	fmt.Println("  remy -query \"shakshuka\" [-pantry \"eggs, tomatoes\"]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -serve          Run the HTTP server")
	fmt.Println("  -addr           Bind address in server mode (default :8080)")
	fmt.Println("  -query          One-shot recipe generation, printed to stdout")
	fmt.Println("  -pantry         Comma-separated ingredients for -query")
	fmt.Println("  -help, -h       Show this help message")
}
