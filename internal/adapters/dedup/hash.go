package dedup

import (
	"crypto/sha256"
	"encoding/hex"

	"content-curator/internal/adapters/similarity"
	"content-curator/internal/domain"
)

// ContentHash возвращает SHA-256 (hex) от канонической формы заголовка,
// текста и ссылки. Записи, отличающиеся только регистром, пробелами
// и пунктуацией, получают одинаковый хэш.
func ContentHash(record domain.ContentRecord) string {
	return hashNormalized(record, similarity.NormalizeURL(record.URL))
}

func hashNormalized(record domain.ContentRecord, normalizedURL string) string {
	payload := similarity.NormalizeForHashing(record.Title) + "|" +
		similarity.NormalizeForHashing(record.Content) + "|" +
		normalizedURL
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
