package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"stride/internal/domain"
)

// SQLSTATE codes mapped to domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// TranslateError maps a driver error to a domain error. what names the
// affected entity in the message; any other error is wrapped with op.
//
//   - no rows: NotFoundError "<what> not found"
//   - unique violation: ValidationError "duplicate <what>"
//   - foreign key violation: NotFoundError "<what> references a missing row"
func TranslateError(err error, op, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Message: what + " not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &domain.ValidationError{Message: "duplicate " + what}
		case codeForeignKeyViolation:
			return &domain.NotFoundError{Message: what + " references a missing row"}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
