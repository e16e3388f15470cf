package tokens

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/polylab/authcore/internal"
)

const recordVersionV1 = 1

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrInvalidPurpose   = errors.New("invalid token purpose")
	ErrStoreUnavailable = errors.New("token store unavailable")
)

type record struct {
	AccountID string
	ExpiresAt int64
}

// Store persists purpose tokens in Redis, keyed by purpose and token digest.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "act"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *Store) key(purpose Purpose, hash [32]byte) string {
	return s.prefix + ":" + purpose.String() + ":" + hex.EncodeToString(hash[:])
}

// Issue creates a token bound to accountID under purpose, valid for ttl,
// and returns the plaintext value. The plaintext is not re-derivable from
// storage afterward.
func (s *Store) Issue(ctx context.Context, accountID string, purpose Purpose, ttl time.Duration) (string, error) {
	if !purpose.Valid() {
		return "", ErrInvalidPurpose
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}

	plaintext, hash, err := internal.NewToken()
	if err != nil {
		return "", err
	}

	encoded, err := encodeRecord(&record{
		AccountID: accountID,
		ExpiresAt: s.now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, s.key(purpose, hash), encoded, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return plaintext, nil
}

// Consume validates token under purpose and deletes it in the same atomic
// step, returning the bound account id. A second concurrent Consume of the
// same token observes ErrTokenNotFound. Expired rows are invalid on first
// attempt even when not yet swept by the store TTL.
func (s *Store) Consume(ctx context.Context, token string, purpose Purpose) (string, error) {
	if !purpose.Valid() {
		return "", ErrInvalidPurpose
	}

	const maxRetries = 4
	key := s.key(purpose, internal.HashToken(token))

	for i := 0; i < maxRetries; i++ {
		var accountID string

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			rec, err := decodeRecord(data)
			if err != nil {
				return err
			}

			if s.now().Unix() >= rec.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrTokenNotFound
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return err
			}

			accountID = rec.AccountID
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return "", ErrTokenNotFound
			case errors.Is(err, ErrTokenNotFound):
				return "", err
			default:
				return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
		}

		return accountID, nil
	}

	return "", ErrTokenNotFound
}

func encodeRecord(rec *record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, rec.ExpiresAt); err != nil {
		return nil, err
	}

	if len(rec.AccountID) > 65535 {
		return nil, errors.New("token record account id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(rec.AccountID))); err != nil {
		return nil, err
	}
	buf.WriteString(rec.AccountID)

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("invalid token record version")
	}

	rec := &record{}

	if err := binary.Read(reader, binary.BigEndian, &rec.ExpiresAt); err != nil {
		return nil, err
	}

	var accountIDLen uint16
	if err := binary.Read(reader, binary.BigEndian, &accountIDLen); err != nil {
		return nil, err
	}

	accountID := make([]byte, accountIDLen)
	if _, err := io.ReadFull(reader, accountID); err != nil {
		return nil, err
	}
	rec.AccountID = string(accountID)

	return rec, nil
}
