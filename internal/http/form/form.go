// Package form содержит хелперы разбора form-encoded запросов
// административных конечных точек: числовые поля со значениями по
// умолчанию и чекбоксы.
package form

import (
	"net/http"
	"strconv"
)

// Int возвращает числовое значение поля формы или def, если поле
// пустое либо не является числом.
func Int(r *http.Request, name string, def int) int {
	raw := r.PostFormValue(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// Bool трактует поле формы как чекбокс: любое непустое значение,
// кроме "false" и "0", считается истиной.
func Bool(r *http.Request, name string) bool {
	switch r.PostFormValue(name) {
	case "", "false", "0":
		return false
	default:
		return true
	}
}
