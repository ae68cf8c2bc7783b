package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jgivc/pageindex/internal/adapter/tpladapter"
	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/entity"
	"github.com/jgivc/pageindex/internal/metrics"
	"github.com/jgivc/pageindex/internal/util"
)

type PageStorage interface {
	Scan(ctx context.Context) ([]*entity.Page, error)
}

type VersionService interface {
	Resolve(ctx context.Context, entryCount int) entity.Version
	Save(ctx context.Context, state *entity.VersionState) error
}

type Renderer interface {
	Render(pages []*entity.Page, version entity.Version) (string, error)
}

type OutputStorage interface {
	Path() string
	Write(content string) error
}

type IndexerService struct {
	running  atomic.Bool
	store    PageStorage
	versions VersionService
	renderer Renderer
	output   OutputStorage
	recorder metrics.Recorder
	now      func() time.Time
	log      *slog.Logger
}

func NewIndexService(store PageStorage, versions VersionService, renderer Renderer, output OutputStorage, recorder metrics.Recorder, log *slog.Logger) *IndexerService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	return &IndexerService{
		store:    store,
		versions: versions,
		renderer: renderer,
		output:   output,
		recorder: recorder,
		now:      time.Now,
		log:      log.With(slog.String("item", "IndexService")),
	}
}

// Build runs the whole pipeline once: scan, sort, resolve the version,
// render and write. Only scan, render and write errors fail the build.
func (i *IndexerService) Build(ctx context.Context) (*entity.BuildResult, error) {
	if !i.running.CompareAndSwap(false, true) {
		return nil, common.ErrBuildInProgress
	}
	defer i.running.Store(false)

	started := i.now()
	buildID := uuid.NewString()
	log := i.log.With(slog.String("build_id", buildID))

	result, err := i.build(ctx, buildID, log)
	if err != nil {
		i.recorder.IncBuildFailure()
		i.flushMetrics(log)

		return nil, err
	}

	i.recorder.ObserveBuild(result, i.now().Sub(started))
	i.flushMetrics(log)

	return result, nil
}

func (i *IndexerService) build(ctx context.Context, buildID string, log *slog.Logger) (*entity.BuildResult, error) {
	pages, err := i.store.Scan(ctx)
	if err != nil {
		log.Error("Cannot scan", slog.Any("error", err))

		return nil, fmt.Errorf("cannot scan pages: %w", err)
	}

	tpladapter.SortPages(pages)
	log.Info("Scan pages", slog.Int("count", len(pages)))

	version := i.versions.Resolve(ctx, len(pages))

	content, err := i.renderer.Render(pages, version)
	if err != nil {
		log.Error("Cannot render index", slog.Any("error", err))

		return nil, fmt.Errorf("cannot render index: %w", err)
	}

	if err := i.output.Write(content); err != nil {
		log.Error("Cannot write index", slog.String("path", i.output.Path()), slog.Any("error", err))

		return nil, fmt.Errorf("cannot write index: %w", err)
	}

	state := &entity.VersionState{
		LastMinor:   version.Minor,
		EntryCount:  len(pages),
		Version:     version.String(),
		ContentHash: util.GetIDFromString(&content),
		BuildID:     buildID,
		GeneratedAt: i.now().UTC(),
	}
	if err := i.versions.Save(ctx, state); err != nil {
		log.Warn("Cannot save version state", slog.Any("error", err))
	}

	log.Info("Index written", slog.String("path", i.output.Path()), slog.String("version", version.String()))

	return &entity.BuildResult{
		BuildID:    buildID,
		OutputFile: i.output.Path(),
		Version:    version,
		EntryCount: len(pages),
		Pages:      pages,
	}, nil
}

func (i *IndexerService) flushMetrics(log *slog.Logger) {
	if err := i.recorder.Flush(); err != nil {
		log.Warn("Cannot write metrics", slog.Any("error", err))
	}
}
