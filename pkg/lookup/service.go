package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

type lookupRepository interface {
	findAll(ctx context.Context, weddingID uint) ([]model.LookupOption, error)
	save(ctx context.Context, option *model.LookupOption) error
	delete(ctx context.Context, weddingID uint, kind, code string) error
}

type invalidator interface {
	InvalidateWedding(ctx context.Context, weddingID uint)
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, repository lookupRepository, client *redis.Client, ttl time.Duration, invalidator invalidator) *service {
	return &service{
		logger:      logger,
		repository:  repository,
		redis:       client,
		ttl:         ttl,
		invalidator: invalidator,
	}
}

// service caches the lookups of a wedding in Redis. Redis being unavailable only costs a database
// read.
type service struct {
	logger      *slog.Logger
	repository  lookupRepository
	redis       *redis.Client
	ttl         time.Duration
	invalidator invalidator
}

func cacheKey(weddingID uint) string {
	return fmt.Sprintf("lookups:%d", weddingID)
}

func (s *service) FindAll(ctx context.Context, weddingID uint) ([]model.LookupOption, error) {
	return s.repository.findAll(ctx, weddingID)
}

// Lookups returns the code to label tables of the wedding, by kind.
func (s *service) Lookups(ctx context.Context, weddingID uint) (roster.Lookups, error) {
	key := cacheKey(weddingID)
	cached, err := s.redis.WithContext(ctx).Get(key).Bytes()
	if err == nil {
		var lookups roster.Lookups
		err := json.Unmarshal(cached, &lookups)
		if err == nil {
			return lookups, nil
		}
		s.logger.WarnContext(ctx, "Dropping unreadable cached lookups", "key", key, "error", err)
	} else if err != redis.Nil {
		s.logger.WarnContext(ctx, "Failed to read cached lookups", "key", key, "error", err)
	}

	options, err := s.repository.findAll(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	lookups := make(roster.Lookups)
	for _, option := range options {
		if lookups[option.Kind] == nil {
			lookups[option.Kind] = make(map[string]string)
		}
		lookups[option.Kind][option.Code] = option.Label
	}

	body, err := json.Marshal(lookups)
	if err != nil {
		return nil, err
	}
	if err := s.redis.WithContext(ctx).Set(key, body, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache lookups", "key", key, "error", err)
	}
	return lookups, nil
}

func (s *service) Save(ctx context.Context, option *model.LookupOption) error {
	if err := s.repository.save(ctx, option); err != nil {
		return err
	}
	s.changed(ctx, option.WeddingID)
	return nil
}

func (s *service) Delete(ctx context.Context, weddingID uint, kind, code string) error {
	if err := s.repository.delete(ctx, weddingID, kind, code); err != nil {
		return err
	}
	s.changed(ctx, weddingID)
	return nil
}

// changed drops the cached lookups and every projection showing their labels.
func (s *service) changed(ctx context.Context, weddingID uint) {
	ctx = context.WithoutCancel(ctx)
	if err := s.redis.WithContext(ctx).Del(cacheKey(weddingID)).Err(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to drop cached lookups", "weddingId", weddingID, "error", err)
	}
	s.invalidator.InvalidateWedding(ctx, weddingID)
}
