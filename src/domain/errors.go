package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrEntityNotFound = errors.New("entity not found")

	ErrInvalidOperation = errors.New("invalid operation")

	ErrStorage = errors.New("storage failure")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

type EntityKind string

const (
	KindUser   EntityKind = "user"
	KindFilm   EntityKind = "film"
	KindReview EntityKind = "review"
)

// NotFoundError identifica qual usuário, filme ou review não existe.
type NotFoundError struct {
	Kind EntityKind
	ID   int64
}

func NewNotFound(kind EntityKind, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

type invalidOperationError struct {
	msg string
}

func NewInvalidOperation(format string, args ...any) error {
	return &invalidOperationError{msg: fmt.Sprintf(format, args...)}
}

func (e *invalidOperationError) Error() string {
	return "invalid operation: " + e.msg
}

func (e *invalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// StorageError embrulha qualquer falha vinda do Entity Store. Não há retry automático.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsDomainError indica se o erro já pertence à taxonomia do domínio.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrEntityNotFound) || errors.Is(err, ErrInvalidOperation) || errors.Is(err, ErrStorage)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// AsStorageError mantém erros que já pertencem ao domínio e embrulha o resto como StorageError.
func AsStorageError(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return NewStorageError(op, err)
}
