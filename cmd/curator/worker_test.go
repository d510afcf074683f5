package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"content-curator/internal/domain"
	"content-curator/internal/usecase/curation"
)

type onceCache struct {
	keys map[string]bool
}

func (c *onceCache) Once(key string, _ time.Duration, fn func() error) error {
	if c.keys[key] {
		return nil
	}
	c.keys[key] = true
	if err := fn(); err != nil {
		delete(c.keys, key)
		return err
	}
	return nil
}
func (c *onceCache) Set(string, []byte, time.Duration) error { return nil }
func (c *onceCache) Get(string) ([]byte, error)              { return nil, errors.New("miss") }

type stubRunner struct {
	err   error
	calls int
}

func (r *stubRunner) Run(context.Context, domain.CurationJob) (curation.RunResult, error) {
	r.calls++
	return curation.RunResult{}, r.err
}

type ackRecorder struct {
	results []bool
}

func (a *ackRecorder) ack(success bool) error {
	a.results = append(a.results, success)
	return nil
}

func newTestWorker(r runner) *jobWorker {
	return &jobWorker{
		log:     zerolog.Nop(),
		cache:   &onceCache{keys: map[string]bool{}},
		service: r,
	}
}

func TestProcessAcksSuccess(t *testing.T) {
	r := &stubRunner{}
	w := newTestWorker(r)
	acks := &ackRecorder{}

	w.process(context.Background(), domain.CurationJob{ID: "a", UserID: 1}, acks.ack)

	if r.calls != 1 {
		t.Fatalf("ожидали один прогон, получили %d", r.calls)
	}
	if len(acks.results) != 1 || !acks.results[0] {
		t.Fatalf("ожидали подтверждение, получили %v", acks.results)
	}
}

func TestProcessSkipsRedelivery(t *testing.T) {
	r := &stubRunner{}
	w := newTestWorker(r)
	acks := &ackRecorder{}
	job := domain.CurationJob{ID: "dup", UserID: 1}

	w.process(context.Background(), job, acks.ack)
	w.process(context.Background(), job, acks.ack)

	if r.calls != 1 {
		t.Fatalf("ожидали, что повторная доставка не запустит прогон, получили %d", r.calls)
	}
	if len(acks.results) != 2 || !acks.results[1] {
		t.Fatalf("ожидали подтверждение повторной доставки, получили %v", acks.results)
	}
}

func TestProcessNoContentIsNotRetried(t *testing.T) {
	w := newTestWorker(&stubRunner{err: curation.ErrNoContent})
	acks := &ackRecorder{}

	w.process(context.Background(), domain.CurationJob{ID: "empty", UserID: 1}, acks.ack)

	if len(acks.results) != 1 || !acks.results[0] {
		t.Fatalf("ожидали подтверждение пустого прогона, получили %v", acks.results)
	}
}

func TestProcessRetriesFailures(t *testing.T) {
	r := &stubRunner{err: errors.New("db down")}
	w := newTestWorker(r)
	acks := &ackRecorder{}

	w.process(context.Background(), domain.CurationJob{ID: "fail", UserID: 1}, acks.ack)
	if len(acks.results) != 1 || acks.results[0] {
		t.Fatalf("ожидали возврат в очередь, получили %v", acks.results)
	}

	// ключ снят, повтор снова выполняет прогон
	w.process(context.Background(), domain.CurationJob{ID: "fail", UserID: 1, Attempt: 1}, acks.ack)
	if r.calls != 2 {
		t.Fatalf("ожидали повторный прогон, получили %d", r.calls)
	}
}

func TestProcessGivesUpAfterMaxAttempts(t *testing.T) {
	w := newTestWorker(&stubRunner{err: errors.New("db down")})
	acks := &ackRecorder{}

	w.process(context.Background(), domain.CurationJob{ID: "last", UserID: 1, Attempt: maxDeliveryAttempts - 1}, acks.ack)

	if len(acks.results) != 1 || !acks.results[0] {
		t.Fatalf("ожидали снятие задачи после предела попыток, получили %v", acks.results)
	}
}

func TestProcessDropsInvalidJob(t *testing.T) {
	r := &stubRunner{}
	w := newTestWorker(r)
	acks := &ackRecorder{}

	w.process(context.Background(), domain.CurationJob{UserID: 1}, acks.ack)

	if r.calls != 0 || len(acks.results) != 1 || !acks.results[0] {
		t.Fatalf("ожидали пропуск задачи без идентификатора")
	}
}
