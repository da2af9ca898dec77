package repository

import (
	"context"
	"database/sql"
	"errors"

	"go-coordinator/core/database"
	"go-coordinator/core/logger"
	"go-coordinator/modules/auth/entity"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type AdministratorRepository struct {
	db database.IDatabase
}

func NewAdministratorRepository(db database.IDatabase) *AdministratorRepository {
	return &AdministratorRepository{db: db}
}

func (r *AdministratorRepository) FindByUsername(ctx context.Context, username string) (*entity.Administrator, error) {
	var admin entity.Administrator
	query := `SELECT username, password_hash, created_at FROM administrators WHERE username = $1`
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("AdministratorRepository:FindByUsername:Error", "error", err)
		return nil, err
	}
	return &admin, nil
}

func (r *AdministratorRepository) Create(ctx context.Context, admin *entity.Administrator) error {
	query := `
		INSERT INTO administrators (username, password_hash, created_at)
		VALUES (:username, :password_hash, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAdministratorExists
		}
		logger.Error("AdministratorRepository:Create:Error", "error", err)
		return err
	}
	return nil
}

func (r *AdministratorRepository) Upsert(ctx context.Context, admin *entity.Administrator) error {
	query := `
		INSERT INTO administrators (username, password_hash, created_at)
		VALUES (:username, :password_hash, :created_at)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`
	if _, err := r.db.NamedExecContext(ctx, query, admin); err != nil {
		logger.Error("AdministratorRepository:Upsert:Error", "error", err)
		return err
	}
	return nil
}

func (r *AdministratorRepository) List(ctx context.Context) ([]entity.Administrator, error) {
	admins := []entity.Administrator{}
	query := `SELECT username, password_hash, created_at FROM administrators ORDER BY username`
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		logger.Error("AdministratorRepository:List:Error", "error", err)
		return nil, err
	}
	return admins, nil
}
