// Package dedup разбивает батч материалов на уникальные записи и группы
// дубликатов по ссылкам, заголовкам, тексту и каноническому хэшу.
package dedup

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"content-curator/internal/adapters/similarity"
	"content-curator/internal/domain"
)

// Причины, по которым записи признаются дубликатами.
const (
	ReasonIdenticalURL  = "Identical URL"
	ReasonSimilarURLs   = "Similar URLs"
	ReasonSimilarTitles = "Similar titles"
	ReasonSimilarBody   = "Similar content"
	ReasonIdenticalHash = "Identical content hash"
)

// Options задаёт пороги дедупликации.
type Options struct {
	URLThreshold     float64
	TitleThreshold   float64
	ContentThreshold float64
	// Transitive включает кластеризацию через union-find: если A~B и B~C,
	// все три попадают в одну группу. По умолчанию C остаётся отдельной
	// записью, если не похожа на A напрямую.
	Transitive bool
	// Workers ограничивает параллелизм при подготовке отпечатков.
	Workers int
}

// DefaultOptions возвращает стандартные пороги.
func DefaultOptions() Options {
	return Options{
		URLThreshold:     0.8,
		TitleThreshold:   0.85,
		ContentThreshold: 0.7,
		Workers:          runtime.GOMAXPROCS(0),
	}
}

// Deduplicator реализует domain.Deduplicator.
type Deduplicator struct {
	opts Options
}

var _ domain.Deduplicator = (*Deduplicator)(nil)

// New создаёт дедупликатор. Незаданные пороги берутся из DefaultOptions.
func New(opts Options) *Deduplicator {
	def := DefaultOptions()
	if opts.URLThreshold <= 0 {
		opts.URLThreshold = def.URLThreshold
	}
	if opts.TitleThreshold <= 0 {
		opts.TitleThreshold = def.TitleThreshold
	}
	if opts.ContentThreshold <= 0 {
		opts.ContentThreshold = def.ContentThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	return &Deduplicator{opts: opts}
}

// Deduplicate прогоняет батч с настройками по умолчанию.
func Deduplicate(records []domain.ContentRecord) domain.DeduplicationResult {
	return New(DefaultOptions()).Deduplicate(records)
}

// Deduplicate делит батч на уникальные записи и группы дубликатов.
// Каждая запись попадает ровно в одно место: в UniqueContent либо
// в Duplicates одной из групп. Порядок уникальных записей совпадает
// с порядком во входном батче.
func (d *Deduplicator) Deduplicate(records []domain.ContentRecord) domain.DeduplicationResult {
	if len(records) == 0 {
		return domain.DeduplicationResult{
			UniqueContent:   []domain.ContentRecord{},
			DuplicateGroups: []domain.DuplicateGroup{},
		}
	}
	prints := d.fingerprints(records)
	if d.opts.Transitive {
		return d.cluster(records, prints)
	}
	return d.sweep(records, prints)
}

// sweep — однопроходный алгоритм: запись сравнивается только с ещё
// не занятыми записями правее неё.
func (d *Deduplicator) sweep(records []domain.ContentRecord, prints []fingerprint) domain.DeduplicationResult {
	result := domain.DeduplicationResult{
		UniqueContent:   make([]domain.ContentRecord, 0, len(records)),
		DuplicateGroups: []domain.DuplicateGroup{},
	}
	processed := make([]bool, len(records))
	for i := range records {
		if processed[i] {
			continue
		}
		var (
			duplicates []domain.ContentRecord
			reason     string
		)
		for j := i + 1; j < len(records); j++ {
			if processed[j] {
				continue
			}
			ok, why := d.isDuplicate(prints[i], prints[j])
			if !ok {
				continue
			}
			duplicates = append(duplicates, records[j])
			processed[j] = true
			if reason == "" {
				reason = why
			}
		}
		processed[i] = true
		result.UniqueContent = append(result.UniqueContent, records[i])
		if len(duplicates) > 0 {
			result.DuplicateGroups = append(result.DuplicateGroups, domain.DuplicateGroup{
				Original:   records[i],
				Duplicates: duplicates,
				Reason:     reason,
			})
		}
	}
	return result
}

// isDuplicate проверяет правила по порядку и возвращает первое сработавшее.
func (d *Deduplicator) isDuplicate(a, b fingerprint) (bool, string) {
	if a.hasURL && b.hasURL {
		if a.url.Normalized() == b.url.Normalized() {
			return true, ReasonIdenticalURL
		}
		if sim := similarity.CompareURLs(a.url, b.url); sim >= d.opts.URLThreshold {
			return true, withPercent(ReasonSimilarURLs, sim)
		}
	}
	if sim := similarity.CompareTitles(a.title, b.title); sim >= d.opts.TitleThreshold {
		return true, withPercent(ReasonSimilarTitles, sim)
	}
	if a.hasContent && b.hasContent {
		if sim := similarity.Compare(a.content, b.content); sim >= d.opts.ContentThreshold {
			return true, withPercent(ReasonSimilarBody, sim)
		}
	}
	if a.hash == b.hash {
		return true, ReasonIdenticalHash
	}
	return false, ""
}

// fingerprint — подготовленные формы записи, живущие в пределах одного батча.
type fingerprint struct {
	url        similarity.URL
	hasURL     bool
	title      similarity.Text
	content    similarity.Text
	hasContent bool
	hash       string
}

func newFingerprint(record domain.ContentRecord) fingerprint {
	u := similarity.PrepareURL(record.URL)
	return fingerprint{
		url:        u,
		hasURL:     u.Normalized() != "",
		title:      similarity.Prepare(record.Title),
		content:    similarity.Prepare(record.Content),
		hasContent: strings.TrimSpace(record.Content) != "",
		hash:       hashNormalized(record, u.Normalized()),
	}
}

// fingerprints готовит отпечатки параллельно; результат упорядочен
// так же, как входной батч.
func (d *Deduplicator) fingerprints(records []domain.ContentRecord) []fingerprint {
	prints := make([]fingerprint, len(records))
	var g errgroup.Group
	g.SetLimit(d.opts.Workers)
	for i := range records {
		i := i
		g.Go(func() error {
			prints[i] = newFingerprint(records[i])
			return nil
		})
	}
	_ = g.Wait()
	return prints
}

func withPercent(reason string, sim float64) string {
	return fmt.Sprintf("%s (%d%%)", reason, int(math.Round(sim*100)))
}
