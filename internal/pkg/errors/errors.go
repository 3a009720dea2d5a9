package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, попытка занять уже существующий slug).
	ErrConflict = errors.New("resource state conflict")

	// ErrForbidden используется, когда у игрока недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized используется для ошибок авторизации (неизвестная идентичность игрока).
	ErrUnauthorized = errors.New("unauthorized")
)
