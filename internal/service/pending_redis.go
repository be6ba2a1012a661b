package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisPending is the PendingDeletions backend for deployments running more
// than one instance of the server: the pending set must be visible to
// whichever instance receives the CONFERMA line. TTL enforcement is
// delegated to Redis key expiry.
type RedisPending struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisPending creates a Redis-backed pending set with the given TTL.
func NewRedisPending(rdb *redis.Client, ttl time.Duration) *RedisPending {
	return &RedisPending{rdb: rdb, ttl: ttl}
}

func (p *RedisPending) key(conversationID, id string) string {
	return fmt.Sprintf("superquote:pending:%s:%s", conversationID, strings.ToUpper(id))
}

// Put implements PendingDeletions. SET overwrites, so a repeated request
// for the same id supersedes the stored snapshot and refreshes its TTL.
func (p *RedisPending) Put(ctx context.Context, conversationID string, t *domain.Ticket) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("pending.Put: marshal ticket %s: %w", t.ID, err)
	}
	if err := p.rdb.Set(ctx, p.key(conversationID, t.ID), payload, p.ttl).Err(); err != nil {
		return fmt.Errorf("pending.Put: %w", err)
	}
	return nil
}

// Take implements PendingDeletions. GETDEL makes consume-once atomic even
// when two confirmations race across instances.
func (p *RedisPending) Take(ctx context.Context, conversationID, id string) (*domain.Ticket, error) {
	payload, err := p.rdb.GetDel(ctx, p.key(conversationID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoPendingDeletion
	}
	if err != nil {
		return nil, fmt.Errorf("pending.Take: %w", err)
	}

	var t domain.Ticket
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, fmt.Errorf("pending.Take: unmarshal: %w", err)
	}
	return &t, nil
}
