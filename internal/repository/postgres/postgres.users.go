// FilePath: internal/repository/postgres/postgres.users.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/agrirobotics/datalake/internal/database"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
)

type UserRepo struct {
	PostgresBaseRepo
}

func NewUserRepository(db database.DB) *UserRepo {
	repo := &PostgresBaseRepo{db: db}
	return &UserRepo{PostgresBaseRepo: *repo}
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, password_hash, is_active FROM users WHERE username = $1`

	err := r.db.GetDB().GetContext(ctx, user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("user not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}
