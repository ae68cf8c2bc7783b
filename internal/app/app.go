package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jgivc/pageindex/internal/adapter/fsadapter"
	"github.com/jgivc/pageindex/internal/adapter/tpladapter"
	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/config"
	"github.com/jgivc/pageindex/internal/entity"
	httphandler "github.com/jgivc/pageindex/internal/handler/http"
	"github.com/jgivc/pageindex/internal/metrics"
	repo "github.com/jgivc/pageindex/internal/repository/version"
	sindex "github.com/jgivc/pageindex/internal/service/index"
	sversion "github.com/jgivc/pageindex/internal/service/version"
	"github.com/jgivc/pageindex/internal/storage/index"
	"github.com/jgivc/pageindex/internal/storage/output"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	redisConnectTimeout = 5 * time.Second
	shutdownTimeout     = 5 * time.Second
)

type App struct {
	cfg        *config.Config
	fs         afero.Fs
	root       string
	outputPath string
	statePath  string
	indexer    *sindex.IndexerService
	state      sversion.StateRepository
	rdb        *redis.Client
	stdout     io.Writer
	log        *slog.Logger
}

// NewLogger builds the stderr logger for the configured level.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	return NewWithFS(ctx, afero.NewOsFs(), cfg, log)
}

func NewWithFS(ctx context.Context, fs afero.Fs, cfg *config.Config, log *slog.Logger) (*App, error) {
	root := filepath.Clean(cfg.Root)

	a := &App{
		cfg:        cfg,
		fs:         fs,
		root:       root,
		outputPath: filepath.Join(root, cfg.OutputFileName),
		stdout:     os.Stdout,
		log:        log,
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.TextFile != "" {
		r, err := metrics.NewPrometheusRecorder(prometheus.NewRegistry(), cfg.Metrics.TextFile)
		if err != nil {
			return nil, fmt.Errorf("cannot create metrics recorder: %w", err)
		}
		recorder = r
	}

	if err := a.setupState(ctx); err != nil {
		return nil, err
	}

	var renderOpts []tpladapter.Option
	if cfg.Render.Minify {
		renderOpts = append(renderOpts, tpladapter.WithMinify())
	}

	renderer, err := tpladapter.NewTplAdapter(renderOpts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create renderer: %w", err)
	}

	fsa := fsadapter.NewFSAdapterWithFS(fs, log).WithRecorder(recorder)
	store := index.NewIndexStorage(fs, root, fsa, log, cfg.OutputFileName)
	versions := sversion.NewVersionService(repo.NewMarkerRepository(fs, a.outputPath), a.state, log)
	out := output.NewOutputStorage(fs, a.outputPath, log)

	a.indexer = sindex.NewIndexService(store, versions, renderer, out, recorder, log)

	return a, nil
}

func (a *App) setupState(ctx context.Context) error {
	switch {
	case !a.cfg.State.Enabled:
		return nil
	case a.cfg.State.RedisURL != "":
		cctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()

		rdb, err := repo.NewRedisClient(cctx, a.cfg.State.RedisURL)
		if err != nil {
			return fmt.Errorf("cannot connect state store: %w", err)
		}

		a.rdb = rdb
		a.state = repo.NewRedisRepository(rdb, a.cfg.State.RedisKey, a.log)
	default:
		a.statePath = filepath.Join(a.root, a.cfg.State.FileName)
		a.state = repo.NewFileRepository(a.fs, a.statePath, a.log)
	}

	return nil
}

// Build generates the index once and reports the result on stdout.
func (a *App) Build(ctx context.Context) (*entity.BuildResult, error) {
	res, err := a.indexer.Build(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.stdout, "Erfolg: %s (v%s) mit %d Einträgen erstellt.\n", a.cfg.OutputFileName, res.Version, res.EntryCount)

	return res, nil
}

// Serve builds once, then serves the root directory until ctx is done.
func (a *App) Serve(ctx context.Context, listen string) error {
	if _, err := a.Build(ctx); err != nil {
		return err
	}

	var state httphandler.StateService = disabledState{}
	if a.state != nil {
		state = a.state
	}

	mux := http.NewServeMux()
	mux.Handle("POST /rebuild/{$}", httphandler.NewRebuildHandler(a.indexer, a.log))
	mux.Handle("GET /version/{$}", httphandler.NewVersionHandler(state, a.log))
	mux.Handle("GET /", http.FileServer(afero.NewHttpFs(a.fs).Dir(a.root)))

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Start listen", slog.String("addr", listen))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("cannot serve %s: %w", listen, err)
		}

		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("cannot shutdown server: %w", err)
	}

	return nil
}

func (a *App) Close() error {
	if a.rdb != nil {
		return a.rdb.Close()
	}

	return nil
}

type disabledState struct{}

func (disabledState) Load(context.Context) (*entity.VersionState, error) {
	return nil, common.ErrStateNotFound
}
