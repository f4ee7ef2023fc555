package db

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

// ErrorAttrs returns log attributes describing a backend error: the SQLSTATE
// and its class for Postgres, the result code for SQLite. It returns nil for
// errors that did not come from a driver.
func ErrorAttrs(err error) []slog.Attr {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return []slog.Attr{
			slog.String("sqlstate", pgErr.Code),
			slog.String("sqlstate_class", pgClass(pgErr.Code)),
		}
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return []slog.Attr{
			slog.Int("sqlite_code", int(liteErr.Code)),
			slog.Int("sqlite_extended_code", int(liteErr.ExtendedCode)),
		}
	}
	return nil
}

// IsConnectionError reports whether err means the backend could not be reached.
func IsConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsOperatorIntervention(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked || liteErr.Code == sqlite3.ErrCantOpen
	}
	return false
}

func pgClass(code string) string {
	switch {
	case pgerrcode.IsIntegrityConstraintViolation(code):
		return "integrity_constraint_violation"
	case pgerrcode.IsDataException(code):
		return "data_exception"
	case pgerrcode.IsConnectionException(code):
		return "connection_exception"
	case pgerrcode.IsSyntaxErrororAccessRuleViolation(code):
		return "syntax_error_or_access_rule_violation"
	case pgerrcode.IsInsufficientResources(code):
		return "insufficient_resources"
	case pgerrcode.IsOperatorIntervention(code):
		return "operator_intervention"
	default:
		return "other"
	}
}
