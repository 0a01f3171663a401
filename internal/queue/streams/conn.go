package streams

import (
	"context"
	"fmt"
	"net"

	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Connect opens a Redis client and checks it answers PING.
func Connect(ctx context.Context, cfg config.RedisConfig, log *logrus.Entry) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		Password:     cfg.Password,
		DB:           cfg.DB,
	})
	log.WithFields(logrus.Fields{"addr": client.Options().Addr, "db": cfg.DB}).Debug("connecting to redis")

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if pong != "PONG" {
		_ = client.Close()
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}

	return client, nil
}
