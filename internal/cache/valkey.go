// Package cache is the Valkey-backed page cache for the public site.
// Valkey is strictly an accelerator here: main treats a failed connect
// as a warning and runs the site uncached, and every caller tolerates a
// nil cache.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// connectTimeout bounds both the dial and the verification ping, so a
// dead Valkey delays startup instead of hanging it.
const connectTimeout = 5 * time.Second

// ConnectValkey opens a Valkey client and pings it once. A nil error
// means the cache is usable; any error means the caller should run
// without one.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
