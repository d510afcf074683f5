package ranker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"content-curator/internal/domain"
)

const (
	interestBonus  = 15.0
	techStackBonus = 10.0
	roleBonus      = 10.0
	minRoleWordLen = 3
)

// RelevanceScore оценивает соответствие материала профилю: бонус за каждый
// интерес и технологию, найденные в заголовке, тексте или темах, и плоский
// бонус за совпадение с ролью. Поиск подстрочный, без учёта регистра.
func RelevanceScore(item domain.ContentItem, profile domain.UserProfile) float64 {
	doc := newMatchDoc(item)
	score := 0.0
	for _, term := range uniqueTerms(profile.Interests) {
		if doc.matches(term) {
			score += interestBonus
		}
	}
	for _, term := range uniqueTerms(profile.TechStack) {
		if doc.matches(term) {
			score += techStackBonus
		}
	}
	if doc.matchesRole(profile.ProfessionalRole) {
		score += roleBonus
	}
	return clamp(score, 0, 100)
}

type matchDoc struct {
	title   string
	content string
	topics  []string
}

func newMatchDoc(item domain.ContentItem) matchDoc {
	topics := make([]string, 0, len(item.Topics))
	for _, t := range item.Topics {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			topics = append(topics, t)
		}
	}
	return matchDoc{
		title:   strings.ToLower(item.Title),
		content: strings.ToLower(item.Content),
		topics:  topics,
	}
}

func (d matchDoc) matches(term string) bool {
	if strings.Contains(d.title, term) || strings.Contains(d.content, term) {
		return true
	}
	for _, topic := range d.topics {
		if strings.Contains(topic, term) {
			return true
		}
	}
	return false
}

// matchesRole ищет слова роли только в заголовке и тексте.
func (d matchDoc) matchesRole(role string) bool {
	for _, word := range strings.FieldsFunc(strings.ToLower(role), isSeparator) {
		if utf8.RuneCountInString(word) < minRoleWordLen {
			continue
		}
		if strings.Contains(d.title, word) || strings.Contains(d.content, word) {
			return true
		}
	}
	return false
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
