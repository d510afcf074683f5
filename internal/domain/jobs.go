package domain

import (
	"context"
	"time"
)

// CurationJobCause описывает источник запроса на курирование.
type CurationJobCause string

const (
	// CurationCauseManual: прогон запрошен через API.
	CurationCauseManual CurationJobCause = "manual"
	// CurationCauseScheduled: прогон запланирован по расписанию.
	CurationCauseScheduled CurationJobCause = "scheduled"
)

// CurationJob содержит информацию о задаче курирования.
type CurationJob struct {
	ID          string           `json:"job_id"`
	UserID      int64            `json:"user_id"`
	RequestedAt time.Time        `json:"requested_at"`
	Cause       CurationJobCause `json:"cause"`
	// Attempt считает повторные доставки, начиная с нуля.
	Attempt int `json:"attempt,omitempty"`
}

// Retry возвращает копию задачи для повторной доставки.
func (j CurationJob) Retry() CurationJob {
	j.Attempt++
	return j
}

// CurationQueue описывает очередь задач курирования.
type CurationQueue interface {
	Enqueue(ctx context.Context, job CurationJob) error
	Receive(ctx context.Context) (CurationJob, AckFunc, error)
}

// AckFunc подтверждает обработку. При success == false задача возвращается
// в очередь с увеличенным Attempt.
type AckFunc func(success bool) error
