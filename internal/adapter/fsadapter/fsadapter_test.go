package fsadapter

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jgivc/pageindex/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	reasons []string
}

func (r *countingRecorder) IncExtractionFallback(reason string) {
	r.reasons = append(r.reasons, reason)
}

func TestToPage(t *testing.T) {
	modTime := time.Date(2026, time.January, 17, 12, 0, 0, 0, time.Local)

	testCases := []struct {
		name     string
		relPath  string
		content  []byte
		expected *entity.Page
		reasons  []string
	}{
		{
			name:    "Scenario 1: Plain html",
			relPath: "games/dragon.html",
			content: []byte(`<html><head><title>Tab</title></head><body><h1>Drachenjagd</h1><p>Fang den Drachen</p></body></html>`),
			expected: &entity.Page{
				Path:        "games/dragon.html",
				Folder:      "games",
				Title:       "Drachenjagd",
				Description: "Fang den Drachen",
				ModDate:     "17.01.2026",
			},
		},
		{
			name:    "Scenario 2: Markdown with html fence",
			relPath: "notes/castle.html",
			content: []byte("# Not this one\n\n```html\n<h1>Burg</h1>\n<p class=\"description\">Die Burg</p>\n```\n"),
			expected: &entity.Page{
				Path:        "notes/castle.html",
				Folder:      "notes",
				Title:       "Burg",
				Description: "Die Burg",
				ModDate:     "17.01.2026",
			},
		},
		{
			name:    "Scenario 3: Invalid utf-8",
			relPath: "deep/er/broken.html",
			content: []byte{0xff, 0xfe, 0xfd},
			expected: &entity.Page{
				Path:    "deep/er/broken.html",
				Folder:  "deep/er",
				Title:   "deep/er/broken.html",
				ModDate: "17.01.2026",
			},
			reasons: []string{"parse"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			fullPath := "/site/" + tc.relPath

			require.NoError(t, afero.WriteFile(fs, fullPath, tc.content, 0644))
			require.NoError(t, fs.Chtimes(fullPath, modTime, modTime))

			rec := &countingRecorder{}
			log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
			adapter := NewFSAdapterWithFS(fs, log).WithRecorder(rec)

			require.Equal(t, tc.expected, adapter.ToPage(fullPath, tc.relPath))
			require.Equal(t, tc.reasons, rec.reasons)
		})
	}
}

func TestToPageMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/site/a", os.ModeDir|0755))

	rec := &countingRecorder{}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	adapter := NewFSAdapterWithFS(fs, log).WithRecorder(rec)

	page := adapter.ToPage("/site/a/gone.html", "a/gone.html")
	require.Equal(t, &entity.Page{Path: "a/gone.html", Folder: "a", Title: "a/gone.html"}, page)
	require.Equal(t, []string{"read", "mod_time"}, rec.reasons)
}
