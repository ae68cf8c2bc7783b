package version

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestMarkerRepository(t *testing.T) {
	testCases := []struct {
		name        string
		content     *string
		exists      bool
		minor       int
		expectError error
	}{
		{
			name:   "no output yet",
			exists: false,
		},
		{
			name:    "marker in badge",
			content: ptr(`<div class="version-badge">Version: 3.7</div>`),
			exists:  true,
			minor:   7,
		},
		{
			name:    "whitespace after label",
			content: ptr("Version:\n\t 12.41"),
			exists:  true,
			minor:   41,
		},
		{
			name:    "first marker wins",
			content: ptr("Version: 1.2 Version: 1.9"),
			exists:  true,
			minor:   2,
		},
		{
			name:        "label is case sensitive",
			content:     ptr("version: 1.2 v1.3"),
			exists:      true,
			expectError: common.ErrNoVersionMarker,
		},
		{
			name:        "empty output",
			content:     ptr(""),
			exists:      true,
			expectError: common.ErrNoVersionMarker,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.content != nil {
				require.NoError(t, afero.WriteFile(fs, "/site/index.html", []byte(*tc.content), 0644))
			}

			repo := NewMarkerRepository(fs, "/site/index.html")

			exists, err := repo.Exists()
			require.NoError(t, err)
			require.Equal(t, tc.exists, exists)

			if !tc.exists {
				return
			}

			minor, err := repo.LastMinor()
			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.minor, minor)
		})
	}
}

func TestMarkerRepositoryOverflow(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/index.html", []byte("Version: 1.99999999999999999999999"), 0644))

	_, err := NewMarkerRepository(fs, "/index.html").LastMinor()
	require.Error(t, err)
}

func TestMarkerRepositoryContentHash(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo := NewMarkerRepository(fs, "/index.html")

	_, err := repo.ContentHash()
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/index.html", []byte("abc"), 0644))

	hash, err := repo.ContentHash()
	require.NoError(t, err)
	require.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", hash)
}

func TestFileRepository(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo := NewFileRepository(fs, "/site/.pageindex-state.yml", log)
	ctx := context.Background()

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, common.ErrStateNotFound)

	state := &entity.VersionState{
		LastMinor:   4,
		EntryCount:  9,
		Version:     "9.4",
		ContentHash: "a9993e364706816aba3e25717850c26c9cd0d89d",
		BuildID:     "6f1c1a9e-3c1f-4e55-9d1e-2f0a3a7f4c11",
		GeneratedAt: time.Date(2026, time.January, 17, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, state))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, state.LastMinor, loaded.LastMinor)
	require.Equal(t, state.EntryCount, loaded.EntryCount)
	require.Equal(t, state.Version, loaded.Version)
	require.Equal(t, state.ContentHash, loaded.ContentHash)
	require.Equal(t, state.BuildID, loaded.BuildID)
	require.True(t, state.GeneratedAt.Equal(loaded.GeneratedAt))
}

func TestFileRepositoryBrokenFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/state.yml", []byte("last_minor: [\n"), 0644))

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	_, err := NewFileRepository(fs, "/state.yml", log).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrStateNotFound)
}

func TestRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "http://localhost")
	require.Error(t, err)
}

func TestRedisRepositoryUnreachable(t *testing.T) {
	cl := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer cl.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo := NewRedisRepository(cl, "pageindex:test", log)

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrStateNotFound)

	err = repo.Save(context.Background(), &entity.VersionState{LastMinor: 1})
	require.Error(t, err)
}

func ptr(s string) *string {
	return &s
}
