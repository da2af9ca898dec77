package entity

import "time"

type Participant struct {
	ID        int64     `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Address   string    `db:"address"`
	Phone     string    `db:"phone"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
}
