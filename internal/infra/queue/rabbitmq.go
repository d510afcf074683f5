package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"content-curator/internal/domain"
	"content-curator/internal/infra/metrics"
)

// RabbitCurationQueue реализует очередь задач поверх AMQP: durable очередь,
// persistent сообщения и ручное подтверждение.
type RabbitCurationQueue struct {
	conn  *amqp.Connection
	queue string

	mu         sync.Mutex
	publishCh  *amqp.Channel
	consumeCh  *amqp.Channel
	deliveries <-chan amqp.Delivery
}

var _ domain.CurationQueue = (*RabbitCurationQueue)(nil)

// NewRabbitCurationQueue подключается к брокеру и объявляет очередь.
func NewRabbitCurationQueue(amqpURL, queue string) (*RabbitCurationQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitCurationQueue{conn: conn, queue: queue, publishCh: ch}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitCurationQueue) Enqueue(ctx context.Context, job domain.CurationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}
	start := time.Now()
	q.mu.Lock()
	err = q.publishCh.PublishWithContext(ctx, "", q.queue, false, false, msg)
	q.mu.Unlock()
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу. Сообщение подтверждается через AckFunc;
// при неуспехе публикуется копия с увеличенным Attempt, а оригинал снимается.
func (q *RabbitCurationQueue) Receive(ctx context.Context) (domain.CurationJob, domain.AckFunc, error) {
	deliveries, err := q.consume()
	if err != nil {
		return domain.CurationJob{}, nil, err
	}
	for {
		select {
		case <-ctx.Done():
			return domain.CurationJob{}, nil, ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return domain.CurationJob{}, nil, errors.New("rabbitmq queue: delivery channel closed")
			}
			job, err := decodeJob(d.Body)
			if err != nil {
				// битое сообщение не вернётся в очередь
				_ = d.Nack(false, false)
				return domain.CurationJob{}, nil, err
			}
			return job, q.ackFunc(d, job), nil
		}
	}
}

func (q *RabbitCurationQueue) ackFunc(d amqp.Delivery, job domain.CurationJob) domain.AckFunc {
	return func(success bool) error {
		if success {
			return d.Ack(false)
		}
		if err := q.Enqueue(context.Background(), job.Retry()); err != nil {
			if nackErr := d.Nack(false, true); nackErr != nil {
				return errors.Join(err, nackErr)
			}
			return err
		}
		return d.Ack(false)
	}
}

func (q *RabbitCurationQueue) consume() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deliveries != nil {
		return q.deliveries, nil
	}
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consume channel: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}
	q.consumeCh = ch
	q.deliveries = deliveries
	return deliveries, nil
}

// Close закрывает каналы и соединение.
func (q *RabbitCurationQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	var errs []error
	if q.consumeCh != nil {
		errs = append(errs, q.consumeCh.Close())
	}
	if q.publishCh != nil {
		errs = append(errs, q.publishCh.Close())
	}
	errs = append(errs, q.conn.Close())
	return errors.Join(errs...)
}
