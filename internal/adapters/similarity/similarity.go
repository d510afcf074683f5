// Package similarity сравнивает тексты и ссылки, возвращая оценку в [0,1].
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	wordWeight      = 0.7
	charWeight      = 0.3
	crossHostFactor = 0.3
	minWordLength   = 3
	// minTitleWords — минимальный размер меньшего набора слов, при котором
	// вложенность заголовков учитывается целиком.
	minTitleWords = 3
)

// Text — текст, заранее подготовленный к сравнению.
type Text struct {
	raw   string
	norm  string
	words map[string]struct{}
}

// Prepare нормализует текст один раз для многократных сравнений.
func Prepare(s string) Text {
	norm := NormalizeForComparison(s)
	return Text{raw: s, norm: norm, words: words(norm)}
}

// Empty сообщает, что исходный текст пуст.
func (t Text) Empty() bool {
	return t.raw == ""
}

// TextSimilarity комбинирует пословный коэффициент Жаккара и посимвольную
// похожесть на основе расстояния Левенштейна. Функция симметрична,
// TextSimilarity(x, x) == 1.
func TextSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return Compare(Prepare(a), Prepare(b))
}

// Compare работает как TextSimilarity над подготовленными текстами.
func Compare(a, b Text) float64 {
	if a.raw == b.raw {
		return 1
	}
	if a.raw == "" || b.raw == "" {
		return 0
	}
	return wordWeight*jaccard(a.words, b.words) + charWeight*charSimilarity(a.norm, b.norm)
}

// CompareTitles сравнивает заголовки. В отличие от Compare, заголовок,
// все значимые слова которого (не меньше minTitleWords) входят в другой,
// получает полный пословный вклад. Частичное пересечение оценивается как в Compare.
func CompareTitles(a, b Text) float64 {
	score := Compare(a, b)
	if a.raw == "" || b.raw == "" {
		return score
	}
	smaller := min(len(a.words), len(b.words))
	if smaller < minTitleWords || intersection(a.words, b.words) != smaller {
		return score
	}
	contained := wordWeight + charWeight*charSimilarity(a.norm, b.norm)
	return max(score, contained)
}

// URL — ссылка, заранее подготовленная к сравнению.
type URL struct {
	norm   string
	parsed bool
	host   string
	path   Text
	full   Text
}

// PrepareURL нормализует ссылку один раз для многократных сравнений.
func PrepareURL(raw string) URL {
	norm := NormalizeURL(raw)
	out := URL{norm: norm, full: Prepare(norm)}
	if u, ok := parseURL(norm); ok {
		out.parsed = true
		out.host = u.Host
		out.path = Prepare(pathWithQuery(u.EscapedPath(), u.RawQuery))
	}
	return out
}

// Normalized возвращает каноническую форму ссылки.
func (u URL) Normalized() string {
	return u.norm
}

// URLSimilarity сравнивает ссылки после нормализации. Совпадения между
// разными хостами сильно дисконтируются.
func URLSimilarity(a, b string) float64 {
	return CompareURLs(PrepareURL(a), PrepareURL(b))
}

// CompareURLs работает как URLSimilarity над подготовленными ссылками.
func CompareURLs(a, b URL) float64 {
	if a.norm == b.norm {
		return 1
	}
	if !a.parsed || !b.parsed {
		return Compare(a.full, b.full)
	}
	if a.host != b.host {
		return Compare(a.full, b.full) * crossHostFactor
	}
	return Compare(a.path, b.path)
}

// Levenshtein считает редакционное расстояние по рунам с единичной
// стоимостью вставки, удаления и замены.
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

func charSimilarity(a, b string) float64 {
	longer := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longer == 0 {
		return 1
	}
	return float64(longer-Levenshtein(a, b)) / float64(longer)
}

func words(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) >= minWordLength {
			set[w] = struct{}{}
		}
	}
	return set
}

func intersection(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := intersection(a, b)
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func pathWithQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}
