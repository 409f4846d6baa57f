package service

import "fmt"

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeParse       = "PARSE_ERROR"
	CodePageOutside = "PAGE_OUT_OF_RANGE"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Сравнение по коду, чтобы работал errors.Is(err, service.ErrNotFound)
var (
	ErrValidation = &BusinessError{Code: CodeValidation}
	ErrNotFound   = &BusinessError{Code: CodeNotFound}
	ErrParse      = &BusinessError{Code: CodeParse}
)

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func (b *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == b.Code
}

type Resource string

const ResourceTask Resource = "задача"
const ResourceCategory Resource = "категория"

func NewNotFound(resource Resource, id any) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewParseError(format string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeParse,
		Message: fmt.Sprintf("не удалось разобрать файл %s", format),
		Details: map[string]any{
			"format": format,
		},
		Err: err,
	}
}

func NewPageOutOfRange(page, totalPages int) *BusinessError {
	return &BusinessError{
		Code:    CodePageOutside,
		Message: fmt.Sprintf("страница %d вне диапазона", page),
		Details: map[string]any{
			"page":        page,
			"total_pages": totalPages,
		},
	}
}
