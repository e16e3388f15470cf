package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists session records in Redis. Each session lives under its own
// key with a TTL, and every account keeps a set of its session ids so that
// stale members can be pruned and all sessions revoked at once.
type Store struct {
	redis  redis.UniversalClient
	prefix string

	now func() time.Time
}

// NewStore creates a Store using the given key prefix, e.g. "sess".
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "sess"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *Store) key(id string) string {
	return s.prefix + ":s:" + id
}

func (s *Store) acctKey(accountID string) string {
	return s.prefix + ":acct:" + accountID
}

// Save writes the session record and registers it in the account index. The
// ttl bounds how long Redis keeps the key; expiry enforcement on read uses
// the record's own ExpiresAt timestamp.
func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.ID), data, ttl)
		pipe.SAdd(ctx, s.acctKey(sess.AccountID), sess.ID)
		pipe.Expire(ctx, s.acctKey(sess.AccountID), ttl+time.Hour)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get loads the session with the given id. A record whose expiry timestamp
// has passed is deleted and reported as ErrSessionExpired.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sess, err := Decode(id, data)
	if err != nil {
		// Corrupt record. Drop it rather than fail every lookup.
		s.remove(ctx, id, "")
		return nil, ErrSessionNotFound
	}

	if s.now().Unix() >= sess.ExpiresAt {
		s.remove(ctx, id, sess.AccountID)
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Delete removes the session with the given id. Deleting a session that does
// not exist is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	accountID := ""
	if sess, derr := Decode(id, data); derr == nil {
		accountID = sess.AccountID
	}
	if err := s.remove(ctx, id, accountID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RevokeAll destroys every live session belonging to the account.
func (s *Store) RevokeAll(ctx context.Context, accountID string) error {
	ids, err := s.redis.SMembers(ctx, s.acctKey(accountID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, s.key(id))
		}
		pipe.Del(ctx, s.acctKey(accountID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// PruneExpired walks the account's session index and drops members whose
// record is missing, corrupt, or past its expiry timestamp.
func (s *Store) PruneExpired(ctx context.Context, accountID string) error {
	ids, err := s.redis.SMembers(ctx, s.acctKey(accountID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	nowUnix := s.now().Unix()
	for _, id := range ids {
		data, err := s.redis.Get(ctx, s.key(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			s.redis.SRem(ctx, s.acctKey(accountID), id)
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		sess, derr := Decode(id, data)
		if derr != nil || nowUnix >= sess.ExpiresAt {
			s.remove(ctx, id, accountID)
		}
	}
	return nil
}

// Count reports how many sessions are registered for the account, including
// members not yet pruned.
func (s *Store) Count(ctx context.Context, accountID string) (int64, error) {
	n, err := s.redis.SCard(ctx, s.acctKey(accountID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

func (s *Store) remove(ctx context.Context, id, accountID string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		if accountID != "" {
			pipe.SRem(ctx, s.acctKey(accountID), id)
		}
		return nil
	})
	return err
}
