package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

const keyPrefix = "session:"

// maxTxRetries bounds optimistic-lock retries on concurrent updates to the
// same session.
const maxTxRetries = 5

// RedisStore keeps sessions in redis with a key TTL. Update runs a
// WATCH-guarded read-modify-write so two concurrent requests to the same
// session cannot lose each other's exclusion entries; a conflicting write
// retries the whole transaction.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	sess := Session{
		ID:            NewSessionID(),
		ExcludedLinks: []string{},
		UpdatedAt:     time.Now(),
	}
	if err := s.write(ctx, nil, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, excludedLinks []string, query *models.StructuredQuery) error {
	key := keyPrefix + id

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}

		var sess Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}

		sess.ExcludedLinks = mergeLinks(sess.ExcludedLinks, excludedLinks)
		if query != nil {
			q := *query
			sess.LastStructuredQuery = &q
		}
		sess.UpdatedAt = time.Now()

		return s.write(ctx, tx, sess)
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // concurrent write, retry the read-modify-write
		}
		return err
	}
	return fmt.Errorf("update session %s: too many conflicting writes", id)
}

func (s *RedisStore) write(ctx context.Context, tx *redis.Tx, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := keyPrefix + sess.ID
	if tx == nil {
		return s.client.Set(ctx, key, raw, s.ttl).Err()
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, raw, s.ttl)
		return nil
	})
	return err
}
