package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/posts/internal/cache"
	"github.com/debemdeboas/posts/internal/config"
	"github.com/debemdeboas/posts/internal/db"
	"github.com/debemdeboas/posts/internal/handler"
	"github.com/debemdeboas/posts/internal/logger"
	"github.com/debemdeboas/posts/internal/metrics"
	"github.com/debemdeboas/posts/internal/middleware"
	"github.com/debemdeboas/posts/internal/render"
	"github.com/debemdeboas/posts/internal/repository"
	"github.com/debemdeboas/posts/internal/routes"
	"github.com/debemdeboas/posts/internal/util"
)

//go:embed static/*
var content embed.FS

const (
	envConfigPath  = "POSTS_CONFIG"
	envS3AccessKey = "S3_ACCESS_KEY_ID"
	envS3SecretKey = "S3_SECRET_ACCESS_KEY"

	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	configPath := os.Getenv(envConfigPath)
	if configPath == "" {
		configPath = "config.yaml"
	}

	if err := config.LoadConfig(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.ErrLoadConfig, err)
		os.Exit(1)
	}
	cfg := config.AppConfig

	log := logger.New(cfg.Logging)
	config.SetLogger(log)
	db.SetLogger(log)
	repository.SetLogger(log)
	render.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store := db.NewSQLite(cfg.Database.Path)
	if err := store.InitDB(); err != nil {
		return fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
	}
	defer store.Close()

	pages, closePages, err := newPageCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrOpenPageCache, err)
	}
	defer closePages.Close()

	renderer, err := render.New(cfg.Content.SyntaxTheme)
	if err != nil {
		return err
	}

	metrics.Init()

	h := handler.New(repository.NewDBPostRepository(store), pages, renderer, cfg.Site, log)
	mux, err := newMux(h, cfg.Content.SyntaxTheme)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: middleware.Chain(mux,
			middleware.Logging(log),
			middleware.SecureHeaders,
			middleware.CacheControl,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("cache", cfg.Cache.Backend).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newPageCache opens the configured page cache backend. The returned closer
// releases whatever the backend holds.
func newPageCache(ctx context.Context, cfg config.CacheConfig) (cache.PageCache, io.Closer, error) {
	noop := closerFunc(func() error { return nil })

	switch cfg.Backend {
	case config.CacheBackendBolt:
		pages, err := cache.OpenBoltPageCache(cfg.Bolt.Path, cfg.Bolt.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return pages, pages, nil
	case config.CacheBackendS3:
		client, err := cache.NewS3Client(ctx, cfg.S3, os.Getenv(envS3AccessKey), os.Getenv(envS3SecretKey))
		if err != nil {
			return nil, nil, err
		}
		return cache.NewS3PageCache(client, cfg.S3.Bucket, cfg.S3.Prefix), noop, nil
	case config.CacheBackendMemory, "":
		return cache.NewMemoryPageCache(), noop, nil
	default:
		return nil, nil, errors.New("unknown cache backend " + cfg.Backend)
	}
}

func newMux(h *handler.Handler, syntaxTheme string) (*http.ServeMux, error) {
	static, err := fs.Sub(content, config.StaticLocalDir)
	if err != nil {
		return nil, err
	}

	// ETags for the embedded static files
	err = fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash(data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error hashing static files: %w", err)
	}

	syntaxCSS := []byte(render.SyntaxCSS(syntaxTheme))
	cache.SetStaticHash(routes.SyntaxCSSPath, util.ContentHash(syntaxCSS))

	mux := http.NewServeMux()
	mux.HandleFunc(routes.RobotsPath, serveRobots)
	mux.HandleFunc(routes.SyntaxCSSPath, serveSyntaxCSS(syntaxCSS))
	mux.Handle(routes.StaticPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.Handle(routes.MetricsPath, metrics.Handler())
	h.Register(mux)

	return mux, nil
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow:"))
}

func serveSyntaxCSS(css []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set(config.HCType, config.CTypeCSS)
		w.WriteHeader(http.StatusOK)
		w.Write(css)
	}
}
