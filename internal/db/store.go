package db

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/school-discipline/internal/apperr"
)

// Store wraps the connection pool; services depend on it through small interfaces.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{db: database} }

func (s *Store) DB() *sql.DB { return s.db }

const uniqueViolation = "23505"

// mapErr converts driver errors to the shared taxonomy. Both drivers are in play:
// pgx in production, lib/pq in the container tests.
func mapErr(err error, what, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(what, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(apperr.ErrConflict, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return errors.Join(apperr.ErrConflict, err)
	}
	return err
}
