package config

import (
	"database/sql"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Backend bundles the handles every service talks to: the document store
// (Postgres), the key/value cache (Redis) and the event bus (Kafka).
//
// A Backend is built exactly once in main and passed down to constructors.
// Nothing in the services reaches for package-level clients. The handles are
// safe for concurrent use and live for the lifetime of the process; Close is
// only called on shutdown.
type Backend struct {
	DB     *sql.DB
	Redis  *redis.Client
	Events *kafka.Writer
}

// MustInitBackend connects to Postgres and Redis and prepares a Kafka writer
// for the given topic. An empty topic leaves Events nil.
func MustInitBackend(cfg *Config, topic string) *Backend {
	b := &Backend{
		DB:    MustInitPostgres(cfg),
		Redis: MustInitRedis(cfg),
	}
	if topic != "" {
		b.Events = NewKafkaWriter(cfg, topic)
	}
	return b
}

func (b *Backend) Close() {
	if b.Events != nil {
		if err := b.Events.Close(); err != nil {
			log.Printf("[config] kafka writer close: %v", err)
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			log.Printf("[config] redis close: %v", err)
		}
	}
	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			log.Printf("[config] postgres close: %v", err)
		}
	}
}
