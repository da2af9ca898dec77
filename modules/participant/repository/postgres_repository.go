package repository

import (
	"context"
	"errors"

	"go-coordinator/core/database"
	"go-coordinator/core/logger"
	"go-coordinator/modules/participant/entity"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type ParticipantRepository struct {
	db database.IDatabase
}

func NewParticipantRepository(db database.IDatabase) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *entity.Participant) error {
	query := `
		INSERT INTO participants (first_name, last_name, email, address, phone, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.GetContext(ctx, &p.ID, query, p.FirstName, p.LastName, p.Email, p.Address, p.Phone, p.Notes, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrParticipantExists
		}
		logger.Error("ParticipantRepository:Create:Error", "error", err)
		return err
	}
	return nil
}

func (r *ParticipantRepository) List(ctx context.Context) ([]entity.Participant, error) {
	items := []entity.Participant{}
	query := `
		SELECT id, first_name, last_name, email, address, phone, notes, created_at
		FROM participants
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		logger.Error("ParticipantRepository:List:Error", "error", err)
		return nil, err
	}
	return items, nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id); err != nil {
		logger.Error("ParticipantRepository:Delete:Error", "error", err, "id", id)
		return err
	}
	return nil
}

func (r *ParticipantRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM participants WHERE email = $1)`, email); err != nil {
		logger.Error("ParticipantRepository:ExistsByEmail:Error", "error", err)
		return false, err
	}
	return exists, nil
}
