package version

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/util"
	"github.com/spf13/afero"
)

// versionRegexp matches the marker the renderer puts into the index page.
var versionRegexp = regexp.MustCompile(`Version:\s*\d+\.(\d+)`)

// markerRepository reads the version back from a previously rendered page.
type markerRepository struct {
	fs   afero.Fs
	path string
}

func NewMarkerRepository(fs afero.Fs, path string) *markerRepository {
	return &markerRepository{
		fs:   fs,
		path: path,
	}
}

func (r *markerRepository) Exists() (bool, error) {
	_, err := r.fs.Stat(r.path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("cannot stat %s: %w", r.path, err)
}

func (r *markerRepository) LastMinor() (int, error) {
	content, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", r.path, err)
	}

	matches := versionRegexp.FindSubmatch(content)
	if matches == nil {
		return 0, common.ErrNoVersionMarker
	}

	minor, err := strconv.Atoi(string(matches[1]))
	if err != nil {
		return 0, fmt.Errorf("cannot parse minor version %q: %w", matches[1], err)
	}

	return minor, nil
}

// ContentHash returns the id of the previous output, comparable with
// VersionState.ContentHash.
func (r *markerRepository) ContentHash() (string, error) {
	content, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", r.path, err)
	}

	str := string(content)

	return util.GetIDFromString(&str), nil
}
