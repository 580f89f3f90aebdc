// Package keycode отвечает за формат активационных ключей: нормализацию,
// проверку по грамматике и генерацию случайных кодов.
//
// Грамматика кода: от 1 до 4 групп по 4-6 символов [A-Z0-9], разделённых
// дефисом. Коды нечувствительны к регистру и хранятся в верхнем регистре.
package keycode

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

var codeRe = regexp.MustCompile(`^[A-Z0-9]{4,6}(?:-[A-Z0-9]{4,6}){0,3}$`)

// Normalize приводит код к каноническому виду: без внешних пробелов,
// в верхнем регистре.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid проверяет нормализованный код на соответствие грамматике.
func Valid(code string) bool {
	return codeRe.MatchString(code)
}

// Generate возвращает случайный код из четырёх групп по четыре
// шестнадцатеричных символа, например "3F1A-09BC-77D2-A401".
func Generate() string {
	parts := make([]string, 4)
	for i := range parts {
		buf := make([]byte, 2)
		rand.Read(buf) //nolint:errcheck // начиная с go1.24 не возвращает ошибку
		parts[i] = strings.ToUpper(hex.EncodeToString(buf))
	}
	return strings.Join(parts, "-")
}
