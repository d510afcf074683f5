package similarity

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	comparisonRe   = regexp.MustCompile(`[^\w\s\-.,!?]`)
	hashingRe      = regexp.MustCompile(`[^\w\s]`)
	stopWordsRe    = regexp.MustCompile(`\b(?:the|a|an|and|or|but|in|on|at|to|for|of|with|by|from|up|about|into|through|during)\b`)
	trackingParams = map[string]struct{}{
		"fbclid":   {},
		"gclid":    {},
		"ref":      {},
		"source":   {},
		"campaign": {},
	}
)

// NormalizeForComparison готовит текст к оценке похожести: нижний регистр,
// схлопнутые пробелы, без пунктуации кроме - . , ! ? и без стоп-слов.
func NormalizeForComparison(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = comparisonRe.ReplaceAllString(s, "")
	s = stopWordsRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeForHashing строит каноническую форму текста для хэша.
// Агрессивнее NormalizeForComparison: удаляется вся пунктуация.
func NormalizeForHashing(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = hashingRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeURL приводит ссылку к канонической форме: без трекинговых
// параметров, фрагмента, префикса www. и завершающего слэша.
// Нераспознанная ссылка возвращается в нижнем регистре без пробелов по краям.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	u, ok := parseURL(trimmed)
	if !ok {
		return strings.ToLower(trimmed)
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if isTrackingParam(key) {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	host := strings.ToLower(u.Host)
	for strings.HasPrefix(host, "www.") {
		host = strings.TrimPrefix(host, "www.")
	}
	u.Host = host

	return strings.TrimRight(strings.ToLower(u.String()), "/")
}

// parseURL разбирает абсолютную ссылку. Ссылки без схемы или хоста
// считаются нераспознанными.
func parseURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

func isTrackingParam(key string) bool {
	k := strings.ToLower(key)
	if strings.HasPrefix(k, "utm_") {
		return true
	}
	_, ok := trackingParams[k]
	return ok
}
