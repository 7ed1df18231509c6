package model

import "time"

// StatusCompleted is the status written when a book's notes are finalized.
// 読了(ノート完成) = finished reading, notes complete.
const StatusCompleted = "読了(ノート完成)"

// Book is a reading record owned by a single user. Every query against the
// books table filters on both ID and UserID; a book is never visible outside
// its owner.
type Book struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Status       string     `json:"status"`
	Category     *string    `json:"category"`
	CoverImage   *string    `json:"cover_image"`
	Notes        *string    `json:"notes"`
	LastReadDate *time.Time `json:"last_read_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BookCreate carries the caller-settable fields of a new book.
// ID, UserID and timestamps are assigned server-side.
type BookCreate struct {
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Status       string     `json:"status"`
	Category     *string    `json:"category"`
	CoverImage   *string    `json:"cover_image"`
	Notes        *string    `json:"notes"`
	LastReadDate *time.Time `json:"last_read_date"`
}

// BookUpdate is a partial update. Nil fields are left untouched;
// ID and UserID are never updatable.
type BookUpdate struct {
	Title        *string    `json:"title"`
	Author       *string    `json:"author"`
	Status       *string    `json:"status"`
	Category     *string    `json:"category"`
	CoverImage   *string    `json:"cover_image"`
	Notes        *string    `json:"notes"`
	LastReadDate *time.Time `json:"last_read_date"`
}
