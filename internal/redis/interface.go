package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the subset of redis the repositories depend on.
// Tests back it with miniredis rather than a mock.
type Client interface {
	redis.Cmdable
	Close() error
}
