package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers request keys in redis for a TTL. The first
// claim of a key wins; replays within the TTL are rejected.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, fmt.Sprintf("idem:order:%s", key), "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// RequireNewKey rejects requests replaying an Idempotency-Key already seen.
// Requests without the header pass through untouched; order creation itself
// stays a plain create. Redis errors fail open.
func RequireNewKey(log *slog.Logger, store *IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			seen, err := store.Seen(r.Context(), key)
			if err != nil {
				log.Error("idempotency check failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				writeError(w, http.StatusConflict, "request already processed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
