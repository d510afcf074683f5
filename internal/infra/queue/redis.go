package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"content-curator/internal/domain"
	"content-curator/internal/infra/metrics"
)

// RedisCurationQueue реализует очередь задач на базе Redis lists.
type RedisCurationQueue struct {
	client *redis.Client
	key    string
}

var _ domain.CurationQueue = (*RedisCurationQueue)(nil)

// NewRedisCurationQueue создаёт очередь по указанному ключу.
func NewRedisCurationQueue(client *redis.Client, key string) *RedisCurationQueue {
	return &RedisCurationQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisCurationQueue) Enqueue(ctx context.Context, job domain.CurationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу из очереди. Подтверждение успеха ничего
// не делает: BRPOP уже снял задачу. При неуспехе задача ставится повторно.
func (q *RedisCurationQueue) Receive(ctx context.Context) (domain.CurationJob, domain.AckFunc, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.CurationJob{}, nil, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.CurationJob{}, nil, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.CurationJob{}, nil, err
		}
		if len(res) != 2 {
			return domain.CurationJob{}, nil, errors.New("redis queue: unexpected response")
		}
		job, err := decodeJob([]byte(res[1]))
		if err != nil {
			return domain.CurationJob{}, nil, err
		}
		ack := func(success bool) error {
			if success {
				return nil
			}
			return q.Enqueue(context.Background(), job.Retry())
		}
		return job, ack, nil
	}
}

func decodeJob(payload []byte) (domain.CurationJob, error) {
	var job domain.CurationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return domain.CurationJob{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}
