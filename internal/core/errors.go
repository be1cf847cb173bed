// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForeignKey   = errors.New("foreign key violation")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDuplicateEntry   = 1062
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced  = 1451
	mysqlFKParentMissing  = 1216
	mysqlFKChildRemaining = 1217
)

// ClassifyStoreError tags constraint violations with ErrDuplicateKey or
// ErrForeignKey. The driver error stays in the chain so callers can still
// inspect it; anything else is returned unchanged.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case isDuplicateKey(err):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case isForeignKey(err):
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	default:
		return err
	}
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return strings.Contains(
		strings.ToLower(err.Error()),
		"unique constraint failed",
	)
}

func isForeignKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgForeignKeyViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlNoReferencedRow,
			mysqlRowIsReferenced,
			mysqlFKParentMissing,
			mysqlFKChildRemaining:
			return true
		}
		return false
	}

	return strings.Contains(
		strings.ToLower(err.Error()),
		"foreign key constraint failed",
	)
}

// AppError is an error with an HTTP status and a stable machine code.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		http.StatusNotFound,
		"NOT_FOUND",
		resource+" not found",
		ErrNotFound,
	)
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func ConflictError(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message, err)
}

func InternalError(err error) *AppError {
	return NewAppError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		err.Error(),
		err,
	)
}

// ToAppError maps the sentinel taxonomy onto HTTP errors. Unknown errors
// become a 500 carrying the original message.
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "NOT_FOUND", err.Error(), err)
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(http.StatusBadRequest, "BAD_REQUEST", err.Error(), err)
	case errors.Is(err, ErrDuplicateKey):
		return ConflictError("resource already exists", err)
	case errors.Is(err, ErrForeignKey):
		return ConflictError("referenced resource does not exist", err)
	default:
		return InternalError(err)
	}
}
