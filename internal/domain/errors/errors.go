package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrTaskNotFound       = errors.New("задача не найдена")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrUserAlreadyExists  = errors.New("email уже используется")
	ErrValidationFailed   = errors.New("ошибка валидации")
	ErrUnauthenticated    = errors.New("необходимо войти в систему")
	ErrForbidden          = errors.New("доступ запрещён")
	ErrInvalidToken       = errors.New("недействительный токен")
	ErrTokenExpired       = errors.New("срок действия токена истёк")
	ErrInternalServer     = errors.New("внутренняя ошибка сервера")
	ErrBadRequest         = errors.New("неверный запрос")
	ErrSearchQueryMissing = errors.New("требуется поисковый запрос")
	ErrInvalidDate        = errors.New("некорректная дата")

	ErrInvalidUsername    = errors.New("некорректное имя пользователя")
	ErrInvalidEmail       = errors.New("некорректный email")
	ErrInvalidPassword    = errors.New("некорректный пароль")
	ErrInvalidTitle       = errors.New("некорректный заголовок задачи")
	ErrInvalidDescription = errors.New("некорректное описание задачи")
	ErrInvalidCategory    = errors.New("некорректная категория задачи")

	ErrConfigFileReadFailed = errors.New("не удалось прочитать файл конфигурации")
	ErrConfigParseFailed    = errors.New("не удалось разобрать файл конфигурации")
	ErrConfigInvalidFormat  = errors.New("некорректный формат значения")

	ErrInvalidGzipRequest    = errors.New("некорректное gzip-тело запроса")
	ErrGzipCompressionFailed = errors.New("ошибка gzip-сжатия ответа")
)

// ValidationError describes the first input field that failed validation.
type ValidationError struct {
	Field  string
	Reason error
}

func NewValidationError(field string, reason error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("%s: %s", ErrValidationFailed, e.Field)
	}
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() []error {
	if e.Reason == nil {
		return []error{ErrValidationFailed}
	}
	return []error{ErrValidationFailed, e.Reason}
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }
