package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jgivc/pageindex/internal/entity"
	"github.com/spf13/afero"
)

const (
	pageExt = ".html"
)

type PageAdapter interface {
	ToPage(fullPath, relPath string) *entity.Page
}

type indexStorage struct {
	fs      afero.Fs
	root    string
	skip    map[string]struct{}
	adapter PageAdapter
	log     *slog.Logger
}

// NewIndexStorage scans root for pages. skipFiles are paths relative to root
// that are never collected.
func NewIndexStorage(fs afero.Fs, root string, adapter PageAdapter, log *slog.Logger, skipFiles ...string) *indexStorage {
	skip := make(map[string]struct{}, len(skipFiles))
	for _, f := range skipFiles {
		skip[filepath.Clean(f)] = struct{}{}
	}

	return &indexStorage{
		fs:      fs,
		root:    filepath.Clean(root),
		skip:    skip,
		adapter: adapter,
		log:     log.With(slog.String("item", "IndexStorage")),
	}
}

// Scan collects every *.html file below root. Files directly inside root are
// ignored. The order of the result follows the walk and must be sorted by the
// caller.
func (i *indexStorage) Scan(ctx context.Context) ([]*entity.Page, error) {
	if _, err := i.fs.Stat(i.root); err != nil {
		return nil, fmt.Errorf("cannot stat root %s: %w", i.root, err)
	}

	pages := []*entity.Page{}

	err := afero.Walk(i.fs, i.root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			i.log.Warn("Cannot walk path", slog.String("path", path), slog.Any("error", err))

			if info != nil && info.IsDir() && path != i.root {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() || filepath.Dir(path) == i.root {
			return nil
		}

		if !strings.HasSuffix(info.Name(), pageExt) {
			return nil
		}

		relPath, err := filepath.Rel(i.root, path)
		if err != nil {
			i.log.Warn("Cannot get relative path", slog.String("path", path), slog.Any("error", err))

			return nil
		}

		if _, exists := i.skip[relPath]; exists {
			i.log.Debug("Skip file", slog.String("path", path))

			return nil
		}

		page := i.adapter.ToPage(path, relPath)
		i.log.Debug("Found page", slog.String("path", page.Path), slog.String("title", page.Title))
		pages = append(pages, page)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot walk %s: %w", i.root, err)
	}

	return pages, nil
}
