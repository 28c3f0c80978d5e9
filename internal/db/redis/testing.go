package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

// NewStoreWithBreakerForTest creates a Store with a breaker in front of c (test-only).
func NewStoreWithBreakerForTest(c rueidis.Client, cfg BreakerConfig) *Store {
	return &Store{client: c, breaker: newBreaker(cfg, nil)}
}
