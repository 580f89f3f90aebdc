package models

import "errors"

// Доменные ошибки административных операций. Сервисы возвращают их
// (возможно, обёрнутыми), HTTP-слой отображает в статус ответа.
var (
	// ErrForbidden неверный или отсутствующий токен администратора.
	ErrForbidden = errors.New("bad admin token")
	// ErrNotFound неизвестный код ключа или пользователь.
	ErrNotFound = errors.New("not found")
	// ErrBadFormat код ключа или подтверждение не соответствуют формату.
	ErrBadFormat = errors.New("bad format")
	// ErrBadUnit неизвестная единица измерения длительности.
	ErrBadUnit = errors.New("bad unit")
	// ErrConflict конфликт идентификаторов, например занятое имя при переименовании.
	ErrConflict = errors.New("conflict")
)
