package repository

import (
	"context"

	"go-coordinator/core/database"
	"go-coordinator/core/logger"
	"go-coordinator/modules/checkin/entity"
)

type PostgresRegistry struct {
	db database.IDatabase
}

func NewPostgresRegistry(db database.IDatabase) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

func (r *PostgresRegistry) eventExists(ctx context.Context, eventID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID)
	return exists, err
}

func (r *PostgresRegistry) Get(ctx context.Context, eventID int64) ([]entity.Checkin, error) {
	exists, err := r.eventExists(ctx, eventID)
	if err != nil {
		logger.Error("CheckinRegistry:Get:EventExists:Error", "eventId", eventID, "error", err)
		return nil, err
	}
	if !exists {
		return nil, ErrEventNotFound
	}

	items := []entity.Checkin{}
	query := `
		SELECT event_id, email, status
		FROM event_participants
		WHERE event_id = $1
		ORDER BY email
	`
	if err := r.db.SelectContext(ctx, &items, query, eventID); err != nil {
		logger.Error("CheckinRegistry:Get:Select:Error", "eventId", eventID, "error", err)
		return nil, err
	}
	return items, nil
}

// ApplyUpdate is a single-row UPDATE. When nothing matched, an EXISTS probe
// tells an unknown event from an unknown participant.
func (r *PostgresRegistry) ApplyUpdate(ctx context.Context, eventID int64, email string, status entity.CheckinStatus) (ApplyResult, error) {
	query := `
		UPDATE event_participants
		SET status = $3, updated_at = NOW()
		WHERE event_id = $1 AND email = $2
	`
	res, err := r.db.ExecContext(ctx, query, eventID, email, string(status))
	if err != nil {
		logger.Error("CheckinRegistry:ApplyUpdate:Error", "eventId", eventID, "error", err)
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		return Applied, nil
	}

	exists, err := r.eventExists(ctx, eventID)
	if err != nil {
		logger.Error("CheckinRegistry:ApplyUpdate:EventExists:Error", "eventId", eventID, "error", err)
		return 0, err
	}
	if !exists {
		return RejectedUnknownEvent, nil
	}
	return RejectedUnknownParticipant, nil
}
