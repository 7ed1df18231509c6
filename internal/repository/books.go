// Package repository persists books through PostgREST. Every method takes
// the owning user's id and filters on it together with the book id; no query
// ever runs on the book id alone.
package repository

import (
	"context"
	"errors"
	"time"

	"book-tracker/backend/internal/model"
	"book-tracker/backend/internal/supabase"

	"github.com/google/uuid"
)

// ErrNotFound means no row matched both the book id and the owner filter.
// A book owned by another user is indistinguishable from a missing one.
var ErrNotFound = errors.New("book not found")

const booksTable = "books"

// BookRepository abstracts book persistence for the handlers.
type BookRepository interface {
	List(ctx context.Context, userID string) ([]model.Book, error)
	Get(ctx context.Context, bookID, userID string) (*model.Book, error)
	Create(ctx context.Context, userID string, book model.BookCreate) (*model.Book, error)
	UpdateNotes(ctx context.Context, bookID, userID string, notes *string, lastReadDate *time.Time) (*model.Book, error)
	UpdateStatus(ctx context.Context, bookID, userID string, status *string, updatedAt *time.Time) (*model.Book, error)
	Complete(ctx context.Context, bookID, userID string, notes *string, completed bool, lastReadDate *time.Time, updatedAt *time.Time) (*model.Book, error)
	Update(ctx context.Context, bookID, userID string, fields model.BookUpdate) (*model.Book, error)
	Delete(ctx context.Context, bookID, userID string) error
}

// SupabaseBookRepository implements BookRepository over a Supabase project.
type SupabaseBookRepository struct {
	db *supabase.Client
}

// NewSupabaseBookRepository creates a repository backed by db.
func NewSupabaseBookRepository(db *supabase.Client) *SupabaseBookRepository {
	return &SupabaseBookRepository{db: db}
}

// List returns all books owned by userID. No books is an empty slice,
// not an error.
func (r *SupabaseBookRepository) List(ctx context.Context, userID string) ([]model.Book, error) {
	var books []model.Book
	err := r.db.From(booksTable).
		Select("*").
		Eq("user_id", userID).
		Get(ctx, &books)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// Get returns the book matching both bookID and userID.
func (r *SupabaseBookRepository) Get(ctx context.Context, bookID, userID string) (*model.Book, error) {
	var books []model.Book
	err := r.db.From(booksTable).
		Select("*").
		Eq("id", bookID).
		Eq("user_id", userID).
		Get(ctx, &books)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNotFound
	}
	return &books[0], nil
}

// Create inserts a new book for userID, assigning id and timestamps.
func (r *SupabaseBookRepository) Create(ctx context.Context, userID string, book model.BookCreate) (*model.Book, error) {
	now := time.Now().UTC()
	row := map[string]any{
		"id":             uuid.NewString(),
		"user_id":        userID,
		"title":          book.Title,
		"author":         book.Author,
		"status":         book.Status,
		"category":       book.Category,
		"cover_image":    book.CoverImage,
		"notes":          book.Notes,
		"last_read_date": book.LastReadDate,
		"created_at":     now,
		"updated_at":     now,
	}

	var created []model.Book
	if err := r.db.From(booksTable).Insert(ctx, row, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, errors.New("insert returned no rows")
	}
	return &created[0], nil
}

// UpdateNotes writes notes, last_read_date and updated_at, nothing else.
func (r *SupabaseBookRepository) UpdateNotes(ctx context.Context, bookID, userID string, notes *string, lastReadDate *time.Time) (*model.Book, error) {
	patch := map[string]any{
		"notes":          notes,
		"last_read_date": lastReadDate,
		"updated_at":     time.Now().UTC(),
	}
	return r.patch(ctx, bookID, userID, patch)
}

// UpdateStatus writes status and updated_at. A caller-supplied updatedAt
// takes precedence over server time.
func (r *SupabaseBookRepository) UpdateStatus(ctx context.Context, bookID, userID string, status *string, updatedAt *time.Time) (*model.Book, error) {
	patch := map[string]any{
		"status":     status,
		"updated_at": stampOr(updatedAt),
	}
	return r.patch(ctx, bookID, userID, patch)
}

// Complete finalizes a book's notes. With completed set, status becomes the
// fixed 読了(ノート完成) literal; without it, status is cleared to empty.
func (r *SupabaseBookRepository) Complete(ctx context.Context, bookID, userID string, notes *string, completed bool, lastReadDate *time.Time, updatedAt *time.Time) (*model.Book, error) {
	status := ""
	if completed {
		status = model.StatusCompleted
	}
	patch := map[string]any{
		"notes":          notes,
		"status":         status,
		"last_read_date": lastReadDate,
		"updated_at":     stampOr(updatedAt),
	}
	return r.patch(ctx, bookID, userID, patch)
}

// Update applies the non-nil fields of a partial update. The row is fetched
// first so a miss under this owner fails before anything is written. Every
// partial update also stamps last_read_date to now, even when the change has
// nothing to do with reading; callers depend on that behavior.
func (r *SupabaseBookRepository) Update(ctx context.Context, bookID, userID string, fields model.BookUpdate) (*model.Book, error) {
	if _, err := r.Get(ctx, bookID, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patch := map[string]any{}
	if fields.Title != nil {
		patch["title"] = *fields.Title
	}
	if fields.Author != nil {
		patch["author"] = *fields.Author
	}
	if fields.Status != nil {
		patch["status"] = *fields.Status
	}
	if fields.Category != nil {
		patch["category"] = *fields.Category
	}
	if fields.CoverImage != nil {
		patch["cover_image"] = *fields.CoverImage
	}
	if fields.Notes != nil {
		patch["notes"] = *fields.Notes
	}
	patch["last_read_date"] = now
	patch["updated_at"] = now

	return r.patch(ctx, bookID, userID, patch)
}

// Delete removes the book. Hard delete, no tombstone.
func (r *SupabaseBookRepository) Delete(ctx context.Context, bookID, userID string) error {
	var deleted []model.Book
	err := r.db.From(booksTable).
		Eq("id", bookID).
		Eq("user_id", userID).
		Delete(ctx, &deleted)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SupabaseBookRepository) patch(ctx context.Context, bookID, userID string, patch map[string]any) (*model.Book, error) {
	var updated []model.Book
	err := r.db.From(booksTable).
		Eq("id", bookID).
		Eq("user_id", userID).
		Update(ctx, patch, &updated)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, ErrNotFound
	}
	return &updated[0], nil
}

func stampOr(updatedAt *time.Time) time.Time {
	if updatedAt != nil {
		return *updatedAt
	}
	return time.Now().UTC()
}
