package fsadapter

import (
	"fmt"
	"log/slog"
	"path"

	"github.com/jgivc/pageindex/internal/adapter/htmladapter"
	"github.com/jgivc/pageindex/internal/adapter/mdadapter"
	"github.com/jgivc/pageindex/internal/entity"
	"github.com/jgivc/pageindex/internal/util"
	"github.com/spf13/afero"
)

const (
	modDateLayout = "02.01.2006"
)

type FallbackRecorder interface {
	IncExtractionFallback(reason string)
}

type noopRecorder struct{}

func (noopRecorder) IncExtractionFallback(string) {}

type fsAdapter struct {
	fs         afero.Fs
	normalizer *mdadapter.Normalizer
	recorder   FallbackRecorder

	log *slog.Logger
}

func NewFSAdapter(log *slog.Logger) *fsAdapter {
	return NewFSAdapterWithFS(afero.NewOsFs(), log)
}

func NewFSAdapterWithFS(fs afero.Fs, log *slog.Logger) *fsAdapter {
	return &fsAdapter{
		fs:         fs,
		normalizer: mdadapter.NewNormalizer(),
		recorder:   noopRecorder{},
		log:        log.With(slog.String("item", "FSAdapter")),
	}
}

func (a *fsAdapter) WithRecorder(r FallbackRecorder) *fsAdapter {
	if r != nil {
		a.recorder = r
	}

	return a
}

/*
ToPage never fails. Every problem with a single file degrades to a fallback:
 1. Unreadable or non utf-8 content: title is the relative path, no description.
 2. Missing timestamp: empty date.
*/
func (a *fsAdapter) ToPage(fullPath, relPath string) *entity.Page {
	webPath := util.WebPath(relPath)

	page := &entity.Page{
		Path:   webPath,
		Folder: folderOf(webPath),
		Title:  webPath,
	}

	info, err := a.extractInfo(fullPath, webPath)
	if err != nil {
		a.log.Warn("Cannot extract page info", slog.String("path", fullPath), slog.Any("error", err))
	}
	page.Title = info.Title
	page.Description = info.Description

	stat, err := a.fs.Stat(fullPath)
	if err != nil {
		a.log.Warn("Cannot get modification time", slog.String("path", fullPath), slog.Any("error", err))
		a.recorder.IncExtractionFallback("mod_time")
	} else {
		page.ModDate = stat.ModTime().Format(modDateLayout)
	}

	return page
}

func (a *fsAdapter) extractInfo(fullPath, relPath string) (htmladapter.Info, error) {
	fallback := htmladapter.Info{Title: relPath}

	content, err := afero.ReadFile(a.fs, fullPath)
	if err != nil {
		a.recorder.IncExtractionFallback("read")

		return fallback, fmt.Errorf("cannot read file: %w", err)
	}

	info, err := htmladapter.Extract(a.normalizer.Normalize(content), relPath)
	if err != nil {
		a.recorder.IncExtractionFallback("parse")

		return fallback, err
	}

	return info, nil
}

func folderOf(webPath string) string {
	dir := path.Dir(webPath)
	if dir == "." {
		return ""
	}

	return dir
}
