package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a player, match, rating or MVP row is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists covers duplicate ids and a second rating row for the
	// same (match, player) pair.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict is a write the schema refused: a rating or MVP pointing at a
	// deleted match or player, a FIFA attribute or rating outside 0..100, or a
	// stats/events snapshot Postgres would not accept as JSONB.
	ErrConflict = errors.New("conflict")
)

// pgCodes lists the Postgres codes the services react to.
var pgCodes = map[string]error{
	pgerrcode.UniqueViolation:        ErrAlreadyExists,
	pgerrcode.ForeignKeyViolation:    ErrConflict,
	pgerrcode.CheckViolation:         ErrConflict,
	pgerrcode.NumericValueOutOfRange: ErrConflict,
	pgerrcode.InvalidJSONText:        ErrConflict,
}

// MapPgError translates a Postgres error into a domain error, keeping the
// offending table and constraint in the message. Other errors pass through.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	target, ok := pgCodes[pgErr.Code]
	if !ok {
		return err
	}
	switch {
	case pgErr.ConstraintName != "":
		return fmt.Errorf("%w: %s (%s)", target, pgErr.TableName, pgErr.ConstraintName)
	case pgErr.TableName != "":
		return fmt.Errorf("%w: %s", target, pgErr.TableName)
	default:
		return target
	}
}
