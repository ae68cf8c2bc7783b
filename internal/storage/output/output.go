package output

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
)

type outputStorage struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
}

func NewOutputStorage(fs afero.Fs, path string, log *slog.Logger) *outputStorage {
	return &outputStorage{
		fs:   fs,
		path: path,
		log:  log.With(slog.String("item", "OutputStorage")),
	}
}

func (o *outputStorage) Path() string {
	return o.path
}

// Write replaces the output file with content.
func (o *outputStorage) Write(content string) error {
	if err := afero.WriteFile(o.fs, o.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", o.path, err)
	}

	o.log.Debug("Output written", slog.String("path", o.path), slog.Int("size", len(content)))

	return nil
}
