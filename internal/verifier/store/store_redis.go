package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"procurement/internal/verifier/models"
	id "procurement/pkg/domain"
	"procurement/pkg/platform/sentinel"
)

const defaultKeyPrefix = "audit"

// RedisSnapshots keeps snapshots as JSON values so several verifier
// processes can share what the ingest consumer writes. Keys are
// "<prefix>:tender:<id>" and "<prefix>:bid:<tenderID>:<bidID>".
type RedisSnapshots struct {
	client *redis.Client
	prefix string
}

func NewRedisSnapshots(client *redis.Client, prefix string) *RedisSnapshots {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisSnapshots{client: client, prefix: prefix}
}

func (s *RedisSnapshots) tenderKey(tenderID id.TenderID) string {
	return fmt.Sprintf("%s:tender:%d", s.prefix, tenderID)
}

func (s *RedisSnapshots) bidKey(key models.BidKey) string {
	return fmt.Sprintf("%s:bid:%d:%d", s.prefix, key.TenderID, key.BidID)
}

func (s *RedisSnapshots) SaveTenderAudit(ctx context.Context, a *models.TenderAudit) error {
	return s.put(ctx, s.tenderKey(a.TenderID), a)
}

func (s *RedisSnapshots) FindTenderAudit(ctx context.Context, tenderID id.TenderID) (*models.TenderAudit, error) {
	var a models.TenderAudit
	if err := s.get(ctx, s.tenderKey(tenderID), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *RedisSnapshots) SaveBidAudit(ctx context.Context, key models.BidKey, a *models.BidAudit) error {
	return s.put(ctx, s.bidKey(key), a)
}

func (s *RedisSnapshots) FindBidAudit(ctx context.Context, key models.BidKey) (*models.BidAudit, error) {
	var a models.BidAudit
	if err := s.get(ctx, s.bidKey(key), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *RedisSnapshots) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}

func (s *RedisSnapshots) get(ctx context.Context, key string, v any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}
