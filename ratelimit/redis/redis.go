// Package redis implements the fixed-window rate limiter on a shared Redis
// instance so ceilings hold across horizontally scaled server replicas.
// Window semantics match the in-memory limiter: INCR starts a window on the
// first hit and the key expires when the window elapses.
package redis

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	client redis.UniversalClient
	secret []byte
}

func NewLimiter(ctx context.Context, devMode bool, redisEndpoint string, secret []byte) (*Limiter, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Limiter{client: client, secret: secret}, nil
}

func (l *Limiter) hashIdentifier(value string) string {
	if value == "" {
		value = "unknown"
	}
	mac := hmac.New(sha256.New, l.secret)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

const consumeTimeout = 2 * time.Second

// consumeScript counts the hit and stamps the window TTL in one server-side
// step. A separate INCR then EXPIRE could die between the two calls and leave
// a counter that never expires, locking the identifier out permanently once
// it reaches the ceiling.
var consumeScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

func (l *Limiter) Consume(scope string, rawIdentifier string, maxInWindow int, window time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), consumeTimeout)
	defer cancel()

	key := "rl:{" + scope + ":" + l.hashIdentifier(rawIdentifier) + "}"

	count, err := consumeScript.Run(ctx, l.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		// Fail closed: an unreachable limiter store must not lift ceilings.
		log.Printf("rate limiter consume failed: %v", err)
		return false
	}

	return count <= int64(maxInWindow)
}
