package queue

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"content-curator/internal/domain"
)

// Поддерживаемые бэкенды.
const (
	BackendRedis    = "redis"
	BackendRabbitMQ = "rabbitmq"
)

// Open создаёт очередь выбранного бэкенда. Возвращаемая функция закрывает
// ресурсы, которыми очередь владеет сама.
func Open(backend string, rdb *redis.Client, amqpURL, key string) (domain.CurationQueue, func() error, error) {
	switch backend {
	case "", BackendRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("queue %q: redis client is nil", backend)
		}
		return NewRedisCurationQueue(rdb, key), func() error { return nil }, nil
	case BackendRabbitMQ:
		q, err := NewRabbitCurationQueue(amqpURL, key)
		if err != nil {
			return nil, nil, err
		}
		return q, q.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue backend %q", backend)
	}
}
