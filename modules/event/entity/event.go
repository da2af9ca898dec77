package entity

import "time"

type Event struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type EventSummary struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	CreatedAt    time.Time `db:"created_at"`
	Participants int       `db:"participants"`
}

// EventDetail is an event with the emails registered for it.
type EventDetail struct {
	Event
	Participants []string
}
