package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName: имя должно состоять из латинских букв и пробелов.
	ErrInvalidName = errors.New("name must contain only letters and spaces")
	// ErrInvalidPhone: телефон должен состоять ровно из 10 цифр.
	ErrInvalidPhone = errors.New("phone must be exactly 10 digits")
	// ErrCartEmpty: оформить пустую корзину нельзя.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrLessonNotFound возвращается, если занятия нет в текущем списке.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrNoSpacesLeft: мест на занятии больше нет.
	ErrNoSpacesLeft = errors.New("no spaces left for lesson")
	// ErrCartLineNotFound возвращается, если строки с таким lineId нет в корзине.
	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrInvalidSortKey — неизвестное поле сортировки.
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrInvalidSortDirection — неизвестное направление сортировки.
	ErrInvalidSortDirection = errors.New("invalid sort direction")
	// ErrSessionNotFound возвращается хранилищем, если сессии нет или она истекла.
	ErrSessionNotFound = errors.New("session not found")
	// ErrBackendUnavailable — транспортная ошибка при обращении к бэкенду.
	ErrBackendUnavailable = errors.New("lesson backend unavailable")
	// ErrBackendStatus: бэкенд ответил не-2xx статусом.
	ErrBackendStatus = errors.New("lesson backend returned non-success status")
	// ErrMalformedResponse: тело ответа не удалось разобрать.
	ErrMalformedResponse = errors.New("malformed lesson backend response")
)

// StatusError описывает не-2xx ответ бэкенда. Любой такой статус считается неудачей.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Unwrap позволяет сравнивать через errors.Is(err, ErrBackendStatus).
func (e *StatusError) Unwrap() error {
	return ErrBackendStatus
}

// IsValidationError сообщает, что ошибка вызвана некорректными данными покупателя.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrCartEmpty)
}

// IsBackendError сообщает, что ошибка пришла от бэкенда или транспорта.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrBackendStatus) ||
		errors.Is(err, ErrMalformedResponse)
}
