package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Common database error types that can be used by consumers of this package.
// These provide a standardized set of errors that abstract away the
// underlying database-specific error details.
var (
	// ErrRecordNotFound is returned when a query doesn't find any matching records
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert or update violates a unique constraint
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrInvalidData is returned when the data being saved doesn't meet validation rules
	ErrInvalidData = errors.New("invalid data")

	// ErrUndefinedTable is returned when the sample tables were not migrated
	ErrUndefinedTable = errors.New("undefined table")

	// ErrConnectionFailed is returned for connection exceptions (SQLSTATE class 08)
	ErrConnectionFailed = errors.New("connection failed")

	// ErrQueryCanceled is returned when the statement was canceled or timed out
	ErrQueryCanceled = errors.New("query canceled")

	// ErrNotConnected is returned when the client has no open connection
	ErrNotConnected = errors.New("database client is not initialized")
)

// PostgreSQL error codes handled by TranslateError.
const (
	codeUniqueViolation = "23505"
	codeNotNull         = "23502"
	codeUndefinedTable  = "42P01"
	codeQueryCanceled   = "57014"
	classConnection     = "08"
)

// TranslateError converts GORM and driver errors into the package errors.
// If an error doesn't match any known type, it's returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrInvalidData):
		return ErrInvalidData
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return ErrDuplicateKey
		case pgErr.Code == codeNotNull:
			return ErrInvalidData
		case pgErr.Code == codeUndefinedTable:
			return ErrUndefinedTable
		case pgErr.Code == codeQueryCanceled:
			return ErrQueryCanceled
		case strings.HasPrefix(pgErr.Code, classConnection):
			return ErrConnectionFailed
		}
	}

	return err
}
