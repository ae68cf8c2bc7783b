package version

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/entity"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

type fileRepository struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
}

// NewFileRepository keeps the version state as a yaml file next to the index.
func NewFileRepository(fs afero.Fs, path string, log *slog.Logger) *fileRepository {
	return &fileRepository{
		fs:   fs,
		path: path,
		log:  log.With(slog.String("item", "FileStateRepository")),
	}
}

func (r *fileRepository) Load(_ context.Context) (*entity.VersionState, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrStateNotFound
		}

		return nil, fmt.Errorf("cannot read state file %s: %w", r.path, err)
	}

	var state entity.VersionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("cannot unmarshal state file %s: %w", r.path, err)
	}

	return &state, nil
}

func (r *fileRepository) Save(_ context.Context, state *entity.VersionState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("cannot marshal state: %w", err)
	}

	if err := afero.WriteFile(r.fs, r.path, data, 0644); err != nil {
		return fmt.Errorf("cannot write state file %s: %w", r.path, err)
	}

	r.log.Debug("State saved", slog.String("path", r.path), slog.String("version", state.Version))

	return nil
}
