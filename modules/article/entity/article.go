package entity

import "time"

// Article is a news item. Drafts are visible to administrators only; Text is
// Content with the markup removed and drives search and summaries.
type Article struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Text      string    `db:"text"`
	Published bool      `db:"published"`
	CreatedAt time.Time `db:"created_at"`
}
