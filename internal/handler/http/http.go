package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/entity"
)

type IndexService interface {
	Build(ctx context.Context) (*entity.BuildResult, error)
}

type StateService interface {
	Load(ctx context.Context) (*entity.VersionState, error)
}

func NewRebuildHandler(srv IndexService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "RebuildHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		res, err := srv.Build(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, common.ErrBuildInProgress):
				http.Error(w, "Build process has already started", http.StatusConflict)
			default:
				log.Error("Cannot build index", slog.Any("error", err))
				http.Error(w, "Cannot build index", http.StatusInternalServerError)
			}

			return
		}

		writeJSON(w, res, log)
	}
}

func NewVersionHandler(srv StateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "VersionHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		state, err := srv.Load(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, common.ErrStateNotFound):
				http.Error(w, "Version state not found", http.StatusNotFound)
			default:
				log.Error("Cannot load version state", slog.Any("error", err))
				http.Error(w, "Cannot load version state", http.StatusInternalServerError)
			}

			return
		}

		writeJSON(w, state, log)
	}
}

func writeJSON(w http.ResponseWriter, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Cannot encode response", slog.Any("error", err))
	}
}
