package postgres

import (
	"errors"
	"io"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"stride/internal/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantMsg string
	}{
		{
			name:    "no rows",
			err:     pgx.ErrNoRows,
			wantIs:  domain.ErrNotFound,
			wantMsg: "plan 42 not found",
		},
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: "23505"},
			wantIs:  domain.ErrValidation,
			wantMsg: "duplicate plan 42",
		},
		{
			name:    "foreign key violation",
			err:     &pgconn.PgError{Code: "23503"},
			wantIs:  domain.ErrNotFound,
			wantMsg: "plan 42 references a missing row",
		},
		{
			name:    "other error is wrapped",
			err:     io.ErrUnexpectedEOF,
			wantIs:  io.ErrUnexpectedEOF,
			wantMsg: "get plan: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.err, "get plan", "plan 42")
			if !errors.Is(got, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", got, tt.wantIs)
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", got.Error(), tt.wantMsg)
			}
		})
	}

	if TranslateError(nil, "op", "plan") != nil {
		t.Error("nil error must stay nil")
	}
}
