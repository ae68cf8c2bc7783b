package version

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/entity"
	"github.com/redis/go-redis/v9"
)

const (
	FieldLastMinor   = "last_minor"
	FieldEntryCount  = "entry_count"
	FieldVersion     = "version"
	FieldContentHash = "content_hash"
	FieldBuildID     = "build_id"
	FieldGeneratedAt = "generated_at"
)

// redisRepository keeps the version state in a single redis HASH, so several
// machines building the same site share one counter.
type redisRepository struct {
	cl  *redis.Client
	key string
	log *slog.Logger
}

func NewRedisRepository(cl *redis.Client, key string, log *slog.Logger) *redisRepository {
	return &redisRepository{
		cl:  cl,
		key: key,
		log: log.With(slog.String("item", "RedisStateRepository")),
	}
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cannot parse redis url: %w", err)
	}

	cl := redis.NewClient(opt)
	if _, err := cl.Ping(ctx).Result(); err != nil {
		cl.Close()

		return nil, fmt.Errorf("cannot ping redis: %w", err)
	}

	return cl, nil
}

func (r *redisRepository) Load(ctx context.Context) (*entity.VersionState, error) {
	fields, err := r.cl.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get state %s: %w", r.key, err)
	}

	if len(fields) < 1 {
		return nil, common.ErrStateNotFound
	}

	state := &entity.VersionState{
		Version:     fields[FieldVersion],
		ContentHash: fields[FieldContentHash],
		BuildID:     fields[FieldBuildID],
	}

	if state.LastMinor, err = strconv.Atoi(fields[FieldLastMinor]); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", FieldLastMinor, err)
	}

	if v, ok := fields[FieldEntryCount]; ok {
		if state.EntryCount, err = strconv.Atoi(v); err != nil {
			r.log.Warn("Cannot parse entry count", slog.String("value", v), slog.Any("error", err))
		}
	}

	if v, ok := fields[FieldGeneratedAt]; ok {
		if state.GeneratedAt, err = time.Parse(time.RFC3339, v); err != nil {
			r.log.Warn("Cannot parse generation time", slog.String("value", v), slog.Any("error", err))
		}
	}

	return state, nil
}

func (r *redisRepository) Save(ctx context.Context, state *entity.VersionState) error {
	_, err := r.cl.HSet(ctx, r.key, map[string]any{
		FieldLastMinor:   state.LastMinor,
		FieldEntryCount:  state.EntryCount,
		FieldVersion:     state.Version,
		FieldContentHash: state.ContentHash,
		FieldBuildID:     state.BuildID,
		FieldGeneratedAt: state.GeneratedAt.Format(time.RFC3339),
	}).Result()
	if err != nil {
		return fmt.Errorf("cannot save state %s: %w", r.key, err)
	}

	r.log.Debug("State saved", slog.String("key", r.key), slog.String("version", state.Version))

	return nil
}
