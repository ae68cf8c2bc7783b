package index

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jgivc/pageindex/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type pathAdapter struct{}

func (pathAdapter) ToPage(fullPath, relPath string) *entity.Page {
	return &entity.Page{
		Path:   filepath.ToSlash(relPath),
		Folder: filepath.ToSlash(filepath.Dir(relPath)),
		Title:  filepath.Base(fullPath),
	}
}

func TestScan(t *testing.T) {
	testCases := []struct {
		name      string
		files     []string
		skipFiles []string
		expected  []string
	}{
		{
			name:     "Scenario 1: Empty root",
			expected: []string{},
		},
		{
			name:     "Scenario 2: Root files are ignored",
			files:    []string{"index.html", "about.html", "games/dragon.html"},
			expected: []string{"games/dragon.html"},
		},
		{
			name: "Scenario 3: Nested folders and suffix match",
			files: []string{
				"games/dragon.html",
				"games/space/rocket.html",
				"games/readme.md",
				"games/upper.HTML",
				"games/page.html.bak",
				"notes/a/b/c/deep.html",
			},
			expected: []string{"games/dragon.html", "games/space/rocket.html", "notes/a/b/c/deep.html"},
		},
		{
			name:      "Scenario 4: Skipped files",
			files:     []string{"out/index.html", "out/other.html"},
			skipFiles: []string{"out/index.html"},
			expected:  []string{"out/other.html"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			root := "/site"
			require.NoError(t, fs.MkdirAll(root, os.ModeDir|0755))

			for _, f := range tc.files {
				require.NoError(t, afero.WriteFile(fs, filepath.Join(root, f), []byte("<h1>x</h1>"), 0644))
			}

			log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
			store := NewIndexStorage(fs, root, pathAdapter{}, log, tc.skipFiles...)

			pages, err := store.Scan(context.Background())
			require.NoError(t, err)

			paths := make([]string, 0, len(pages))
			for _, p := range pages {
				paths = append(paths, p.Path)
			}
			sort.Strings(paths)

			require.Equal(t, tc.expected, paths)
		})
	}
}

func TestScanMissingRoot(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	store := NewIndexStorage(afero.NewMemMapFs(), "/nope", pathAdapter{}, log)

	_, err := store.Scan(context.Background())
	require.Error(t, err)
}

func TestScanCanceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/site/a/x.html", []byte("x"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	_, err := NewIndexStorage(fs, "/site", pathAdapter{}, log).Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
