package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/adserve-labs/adengine/internal/models"
)

// Image is one stored campaign creative asset.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Store holds campaign images keyed by (campaign_id, filename).
type Store interface {
	Put(ctx context.Context, campaignID uuid.UUID, img Image) error
	Get(ctx context.Context, campaignID uuid.UUID, filename string) (Image, error)
	List(ctx context.Context, campaignID uuid.UUID) ([]string, error)
	Delete(ctx context.Context, campaignID uuid.UUID, filename string) error
	DeleteAll(ctx context.Context, campaignID uuid.UUID) error
}

// RedisStore keeps image bytes in Redis: a per-campaign hash of filename
// to content type, plus one binary string per image. The hash doubles as
// the per-campaign count for the upload bound.
type RedisStore struct {
	client       *redis.Client
	maxPerCamp   int
	maxSize      int64
	allowedTypes map[string]struct{}
}

// NewRedisStore builds a bounded image store.
func NewRedisStore(client *redis.Client, maxPerCampaign int, maxSize int64, allowedTypes []string) *RedisStore {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}
	return &RedisStore{
		client:       client,
		maxPerCamp:   maxPerCampaign,
		maxSize:      maxSize,
		allowedTypes: allowed,
	}
}

func metaKey(campaignID uuid.UUID) string {
	return "images:" + campaignID.String()
}

func dataKey(campaignID uuid.UUID, filename string) string {
	return "images:" + campaignID.String() + ":" + filename
}

// Put validates and stores one image. Overwriting an existing filename
// does not count against the per-campaign bound.
func (s *RedisStore) Put(ctx context.Context, campaignID uuid.UUID, img Image) error {
	if img.Filename == "" {
		return models.NewPayload("filename is required")
	}
	if int64(len(img.Data)) > s.maxSize {
		return models.NewPayload("image exceeds %d bytes", s.maxSize)
	}
	if _, ok := s.allowedTypes[img.ContentType]; !ok {
		return models.NewPayload("unsupported content type %s", img.ContentType)
	}

	exists, err := s.client.HExists(ctx, metaKey(campaignID), img.Filename).Result()
	if err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("check image: %w", err))
	}
	if !exists {
		count, err := s.client.HLen(ctx, metaKey(campaignID)).Result()
		if err != nil {
			return models.NewCacheUnavailable(fmt.Errorf("count images: %w", err))
		}
		if int(count) >= s.maxPerCamp {
			return models.NewPayload("campaign already holds %d images", s.maxPerCamp)
		}
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, metaKey(campaignID), img.Filename, img.ContentType)
	pipe.Set(ctx, dataKey(campaignID, img.Filename), img.Data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("store image: %w", err))
	}
	return nil
}

// Get loads one image; absence is ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, campaignID uuid.UUID, filename string) (Image, error) {
	contentType, err := s.client.HGet(ctx, metaKey(campaignID), filename).Result()
	if errors.Is(err, redis.Nil) {
		return Image{}, models.ErrNotFound
	}
	if err != nil {
		return Image{}, models.NewCacheUnavailable(fmt.Errorf("get image meta: %w", err))
	}
	data, err := s.client.Get(ctx, dataKey(campaignID, filename)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Image{}, models.ErrNotFound
	}
	if err != nil {
		return Image{}, models.NewCacheUnavailable(fmt.Errorf("get image data: %w", err))
	}
	return Image{Filename: filename, ContentType: contentType, Data: data}, nil
}

// List enumerates the campaign's image filenames.
func (s *RedisStore) List(ctx context.Context, campaignID uuid.UUID) ([]string, error) {
	names, err := s.client.HKeys(ctx, metaKey(campaignID)).Result()
	if err != nil {
		return nil, models.NewCacheUnavailable(fmt.Errorf("list images: %w", err))
	}
	return names, nil
}

// Delete removes one image; absence is ErrNotFound.
func (s *RedisStore) Delete(ctx context.Context, campaignID uuid.UUID, filename string) error {
	removed, err := s.client.HDel(ctx, metaKey(campaignID), filename).Result()
	if err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("delete image meta: %w", err))
	}
	if removed == 0 {
		return models.ErrNotFound
	}
	if err := s.client.Del(ctx, dataKey(campaignID, filename)).Err(); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("delete image data: %w", err))
	}
	return nil
}

// DeleteAll drops every image of a campaign. Used on campaign delete.
func (s *RedisStore) DeleteAll(ctx context.Context, campaignID uuid.UUID) error {
	names, err := s.client.HKeys(ctx, metaKey(campaignID)).Result()
	if err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("list images: %w", err))
	}
	pipe := s.client.TxPipeline()
	for _, name := range names {
		pipe.Del(ctx, dataKey(campaignID, name))
	}
	pipe.Del(ctx, metaKey(campaignID))
	if _, err := pipe.Exec(ctx); err != nil {
		return models.NewCacheUnavailable(fmt.Errorf("delete images: %w", err))
	}
	return nil
}
