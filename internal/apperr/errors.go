package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind классифицирует ошибку для вызывающей стороны
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNetwork            Kind = "network"
	KindRejected           Kind = "rejected"
	KindContractRevert     Kind = "contract_revert"
	KindEncoding           Kind = "encoding"
	KindInvalidCredential  Kind = "invalid_credential"
	KindNotFound           Kind = "not_found"
	KindUnavailable        Kind = "unavailable"
	KindPartiallyCompleted Kind = "partially_completed"
	KindInternal           Kind = "internal"
)

// Error ошибка с видом из таксономии и операцией, на которой она возникла
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает только вид ошибки, чтобы errors.Is(err, ErrNetwork) работал для любой операции
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Сентинелы для errors.Is
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNetwork            = &Error{Kind: KindNetwork}
	ErrRejected           = &Error{Kind: KindRejected}
	ErrContractRevert     = &Error{Kind: KindContractRevert}
	ErrEncoding           = &Error{Kind: KindEncoding}
	ErrInvalidCredential  = &Error{Kind: KindInvalidCredential}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrUnavailable        = &Error{Kind: KindUnavailable}
	ErrPartiallyCompleted = &Error{Kind: KindPartiallyCompleted}
)

// New создаёт ошибку заданного вида
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation короткий конструктор для ошибок входных данных
func Validation(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf возвращает вид ошибки; отмена контекста считается сетевой ошибкой
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}

	return KindInternal
}
