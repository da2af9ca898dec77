package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-coordinator/core/database"
	"go-coordinator/core/logger"
	"go-coordinator/modules/event/entity"

	"github.com/lib/pq"
)

const foreignKeyViolation = "23503"

type EventRepository struct {
	db database.IDatabase
}

func NewEventRepository(db database.IDatabase) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Search(ctx context.Context, keywords []string) ([]entity.EventSummary, error) {
	var (
		conditions []string
		args       []any
	)
	for _, kw := range keywords {
		args = append(args, "%"+escapeLike(kw)+"%")
		conditions = append(conditions, fmt.Sprintf("e.title ILIKE $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
		SELECT e.id, e.title, e.created_at, COUNT(p.email) AS participants
		FROM events e
		LEFT JOIN event_participants p ON p.event_id = e.id
		` + where + `
		GROUP BY e.id
		ORDER BY e.created_at DESC, e.id DESC
	`
	items := []entity.EventSummary{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		logger.Error("EventRepository:Search:Error", "error", err)
		return nil, err
	}
	return items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*entity.EventDetail, error) {
	var detail entity.EventDetail
	err := r.db.GetContext(ctx, &detail.Event, `SELECT id, title, created_at, updated_at FROM events WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		logger.Error("EventRepository:GetByID:Error", "id", id, "error", err)
		return nil, err
	}

	detail.Participants = []string{}
	query := `SELECT email FROM event_participants WHERE event_id = $1 ORDER BY email`
	if err := r.db.SelectContext(ctx, &detail.Participants, query, id); err != nil {
		logger.Error("EventRepository:GetByID:Participants:Error", "id", id, "error", err)
		return nil, err
	}
	return &detail, nil
}

func (r *EventRepository) Create(ctx context.Context, title string, now time.Time) (*entity.Event, error) {
	event := entity.Event{Title: title, CreatedAt: now, UpdatedAt: now}
	query := `
		INSERT INTO events (title, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.GetContext(ctx, &event.ID, query, title, now, now); err != nil {
		logger.Error("EventRepository:Create:Error", "error", err)
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) UpdateTitle(ctx context.Context, id int64, title string, now time.Time) (*entity.Event, error) {
	var event entity.Event
	query := `
		UPDATE events SET title = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, title, created_at, updated_at
	`
	err := r.db.GetContext(ctx, &event, query, id, title, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		logger.Error("EventRepository:UpdateTitle:Error", "id", id, "error", err)
		return nil, err
	}
	return &event, nil
}

// Delete relies on ON DELETE CASCADE to drop the participant rows in the same
// statement.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		logger.Error("EventRepository:Delete:Error", "id", id, "error", err)
		return err
	}
	return nil
}

// AddParticipant leans on the foreign key: inserting for a missing event
// fails with a foreign key violation rather than a race-prone pre-check.
func (r *EventRepository) AddParticipant(ctx context.Context, id int64, email string) (bool, error) {
	query := `
		INSERT INTO event_participants (event_id, email, status)
		VALUES ($1, $2, 'UNKNOWN')
		ON CONFLICT (event_id, email) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, id, email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return false, ErrEventNotFound
		}
		logger.Error("EventRepository:AddParticipant:Error", "id", id, "error", err)
		return false, err
	}

	added, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}
