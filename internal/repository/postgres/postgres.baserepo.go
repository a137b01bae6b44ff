// FilePath: internal/repository/postgres/postgres.baserepo.go
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/agrirobotics/datalake/internal/database"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/lib/pq"
)

// Postgres error codes surfaced as caller errors instead of raw
// database errors.
const (
	pqCodeForeignKeyViolation = "23503"
	pqCodeUniqueViolation     = "23505"
)

type PostgresBaseRepo struct {
	db database.DB
}

func (r *PostgresBaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}

func (r *PostgresBaseRepo) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := r.db.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to execute query", err)
	}
	return result, nil
}

func (r *PostgresBaseRepo) Ping(ctx context.Context) error {
	if err := r.db.GetDB().PingContext(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping database", err)
	}
	return nil
}

func (r *PostgresBaseRepo) Close() error {
	if err := r.db.GetDB().Close(); err != nil {
		return errors.NewDatabaseError("failed to close database", err)
	}
	return nil
}

// mapConstraintError translates integrity violations into caller
// errors: a broken foreign key means the referenced parent does not
// exist, a unique violation means the caller supplied a duplicate key.
func mapConstraintError(err error, opMsg, fkMsg, uniqueMsg string) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqCodeForeignKeyViolation:
			return errors.NewNotFoundError(fkMsg, err)
		case pqCodeUniqueViolation:
			return errors.NewValidationError(uniqueMsg, err)
		}
	}
	return errors.NewDatabaseError(opMsg, err)
}
