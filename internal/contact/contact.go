// Package contact классифицирует контактные данные пользователя:
// телефонный номер, телеграм-хэндл или ссылка вида https://t.me/<handle>.
package contact

import (
	"regexp"
	"strings"

	"github.com/oilshop/order-bot/pkg/e"
)

// Варианты проверяются по порядку, совпадение должно покрывать всю строку целиком.
var (
	phoneRe  = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
	handleRe = regexp.MustCompile(`^@\w{5,}$`)
	linkRe   = regexp.MustCompile(`^https://t\.me/\w{5,}$`)
)

// Validate принимает сырой текст и возвращает нормализованный контакт.
// Нормализация — только обрезка пробелов по краям, телефон не переформатируется.
func Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", e.ErrEmptyContact
	}

	if isPhone(trimmed) || handleRe.MatchString(trimmed) || linkRe.MatchString(trimmed) {
		return trimmed, nil
	}

	return "", e.ErrInvalidContact
}

// isPhone требует минимум 9 цифр; пробелы, дефисы и скобки допускаются между ними.
func isPhone(s string) bool {
	if !phoneRe.MatchString(s) {
		return false
	}

	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 9
}
