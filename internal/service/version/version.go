package version

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/entity"
)

const (
	firstMinor = 1
)

type MarkerRepository interface {
	Exists() (bool, error)
	LastMinor() (int, error)
	ContentHash() (string, error)
}

type StateRepository interface {
	Load(ctx context.Context) (*entity.VersionState, error)
	Save(ctx context.Context, state *entity.VersionState) error
}

type VersionService struct {
	marker MarkerRepository
	state  StateRepository
	log    *slog.Logger
}

// NewVersionService resolves versions from the sidecar state first and the
// marker in the previous output second. state may be nil. The state is only
// trusted for the exact output it was saved with.
func NewVersionService(marker MarkerRepository, state StateRepository, log *slog.Logger) *VersionService {
	return &VersionService{
		marker: marker,
		state:  state,
		log:    log.With(slog.String("service", "version")),
	}
}

/*
Resolve never fails, every problem degrades to "<entryCount>.1":
 1. No previous output: first minor.
 2. Sidecar state saved for this very output: its last minor + 1.
 3. Marker in the previous output: its minor + 1.
*/
func (s *VersionService) Resolve(ctx context.Context, entryCount int) entity.Version {
	version := entity.Version{Major: entryCount, Minor: firstMinor}

	exists, err := s.marker.Exists()
	if err != nil {
		s.log.Warn("Cannot check previous output", slog.Any("error", err))

		return version
	}

	if !exists {
		s.log.Debug("No previous output", slog.String("version", version.String()))

		return version
	}

	if lastMinor, ok := s.lastMinorFromState(ctx); ok {
		version.Minor = lastMinor + 1

		return version
	}

	lastMinor, err := s.marker.LastMinor()
	if err != nil {
		if errors.Is(err, common.ErrNoVersionMarker) {
			s.log.Info("Previous output has no version marker", slog.String("version", version.String()))
		} else {
			s.log.Warn("Cannot read previous version", slog.Any("error", err))
		}

		return version
	}

	version.Minor = lastMinor + 1

	return version
}

func (s *VersionService) lastMinorFromState(ctx context.Context) (int, bool) {
	if s.state == nil {
		return 0, false
	}

	state, err := s.state.Load(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrStateNotFound) {
			s.log.Warn("Cannot load version state", slog.Any("error", err))
		}

		return 0, false
	}

	hash, err := s.marker.ContentHash()
	if err != nil {
		s.log.Warn("Cannot hash previous output", slog.Any("error", err))

		return 0, false
	}

	if state.ContentHash != hash {
		s.log.Debug("Version state belongs to another output", slog.String("state_version", state.Version))

		return 0, false
	}

	if state.LastMinor < 0 {
		s.log.Warn("Ignore negative minor version in state", slog.Int("last_minor", state.LastMinor))

		return 0, false
	}

	return state.LastMinor, true
}

// Save records the version that was just published. Errors are returned so
// the caller can log them, they never fail a build.
func (s *VersionService) Save(ctx context.Context, state *entity.VersionState) error {
	if s.state == nil {
		return nil
	}

	return s.state.Save(ctx, state)
}
