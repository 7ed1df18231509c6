package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"book-tracker/backend/internal/model"
	"book-tracker/backend/internal/supabase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures what the repository sent to PostgREST.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// fakePostgREST serves canned rows and records every request.
type fakePostgREST struct {
	requests []recordedRequest
	respond  func(r recordedRequest) any
}

func (f *fakePostgREST) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		}
		if body, _ := io.ReadAll(r.Body); len(body) > 0 {
			json.Unmarshal(body, &rec.Body)
		}
		f.requests = append(f.requests, rec)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.respond(rec))
	}
}

func (f *fakePostgREST) last() recordedRequest {
	return f.requests[len(f.requests)-1]
}

func newTestRepo(t *testing.T, fake *fakePostgREST) *SupabaseBookRepository {
	t.Helper()

	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client, err := supabase.New(supabase.Config{URL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return NewSupabaseBookRepository(client)
}

func bookRow(id, userID string) map[string]any {
	return map[string]any{
		"id":         id,
		"user_id":    userID,
		"title":      "Clean Architecture",
		"author":     "Robert C. Martin",
		"status":     "reading",
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-01T00:00:00Z",
	}
}

func respondRows(rows ...map[string]any) func(recordedRequest) any {
	return func(recordedRequest) any {
		if rows == nil {
			return []map[string]any{}
		}
		return rows
	}
}

func TestListScopesQueryToOwner(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	books, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "b1", books[0].ID)

	req := fake.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/books", req.Path)
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))
	assert.Equal(t, "*", req.Query.Get("select"))
}

func TestListEmptyIsNotAnError(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows()}
	repo := newTestRepo(t, fake)

	books, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestGetFiltersOnBothIDAndOwner(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	book, err := repo.Get(context.Background(), "b1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "b1", book.ID)

	req := fake.last()
	assert.Equal(t, "eq.b1", req.Query.Get("id"))
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))
}

func TestGetMissingRowIsNotFound(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows()}
	repo := newTestRepo(t, fake)

	_, err := repo.Get(context.Background(), "b1", "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAssignsIDOwnerAndTimestamps(t *testing.T) {
	fake := &fakePostgREST{respond: func(r recordedRequest) any {
		return []map[string]any{bookRow(r.Body["id"].(string), r.Body["user_id"].(string))}
	}}
	repo := newTestRepo(t, fake)

	before := time.Now().UTC().Add(-time.Second)
	_, err := repo.Create(context.Background(), "u1", model.BookCreate{
		Title:  "Clean Architecture",
		Author: "Robert C. Martin",
		Status: "unread",
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "u1", req.Body["user_id"])

	id, err := uuid.Parse(req.Body["id"].(string))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	createdAt, err := time.Parse(time.RFC3339, req.Body["created_at"].(string))
	require.NoError(t, err)
	assert.True(t, createdAt.After(before))
	assert.Equal(t, req.Body["created_at"], req.Body["updated_at"])
}

func TestCreateGeneratesUniqueIDs(t *testing.T) {
	fake := &fakePostgREST{respond: func(r recordedRequest) any {
		return []map[string]any{bookRow(r.Body["id"].(string), "u1")}
	}}
	repo := newTestRepo(t, fake)

	seen := map[string]bool{}
	for range 5 {
		book, err := repo.Create(context.Background(), "u1", model.BookCreate{
			Title: "T", Author: "A", Status: "unread",
		})
		require.NoError(t, err)
		assert.False(t, seen[book.ID], "duplicate id %s", book.ID)
		seen[book.ID] = true
	}
}

func TestUpdateNotesWritesOnlyNotesFields(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	notes := "great book"
	readAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := repo.UpdateNotes(context.Background(), "b1", "u1", &notes, &readAt)
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "eq.b1", req.Query.Get("id"))
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))

	assert.Len(t, req.Body, 3)
	assert.Equal(t, "great book", req.Body["notes"])
	assert.Contains(t, req.Body, "last_read_date")
	assert.Contains(t, req.Body, "updated_at")
}

func TestUpdateStatusCallerTimestampWins(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	status := "reading"
	suppliedAt := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.UpdateStatus(context.Background(), "b1", "u1", &status, &suppliedAt)
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, "reading", req.Body["status"])
	assert.Equal(t, "2023-06-01T00:00:00Z", req.Body["updated_at"])
}

func TestCompleteSetsFixedStatusLiteral(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	notes := "done"
	_, err := repo.Complete(context.Background(), "b1", "u1", &notes, true, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, fake.last().Body["status"])
}

func TestCompleteWithoutFlagClearsStatus(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	notes := "still reading"
	_, err := repo.Complete(context.Background(), "b1", "u1", &notes, false, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "", fake.last().Body["status"])
}

func TestPartialUpdateTouchesOnlySentFieldsPlusReadStamp(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	category := "Science"
	_, err := repo.Update(context.Background(), "b1", "u1", model.BookUpdate{Category: &category})
	require.NoError(t, err)

	// Ownership check first, then the patch.
	require.Len(t, fake.requests, 2)
	assert.Equal(t, http.MethodGet, fake.requests[0].Method)
	assert.Equal(t, "eq.u1", fake.requests[0].Query.Get("user_id"))

	patch := fake.requests[1]
	assert.Equal(t, http.MethodPatch, patch.Method)
	assert.Len(t, patch.Body, 3)
	assert.Equal(t, "Science", patch.Body["category"])
	// Any partial update stamps last_read_date, even one unrelated to
	// reading. Callers depend on it.
	assert.Contains(t, patch.Body, "last_read_date")
	assert.Contains(t, patch.Body, "updated_at")
	assert.NotContains(t, patch.Body, "title")
	assert.NotContains(t, patch.Body, "author")
	assert.NotContains(t, patch.Body, "notes")
	assert.NotContains(t, patch.Body, "status")
	assert.NotContains(t, patch.Body, "id")
	assert.NotContains(t, patch.Body, "user_id")
}

func TestPartialUpdateMissingRowFailsBeforeWriting(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows()}
	repo := newTestRepo(t, fake)

	title := "New Title"
	_, err := repo.Update(context.Background(), "b1", "u2", model.BookUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodGet, fake.requests[0].Method)
}

func TestUpdatePatchMissingRowIsNotFound(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows()}
	repo := newTestRepo(t, fake)

	notes := "n"
	_, err := repo.UpdateNotes(context.Background(), "b1", "u2", &notes, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteScopedToOwner(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows(bookRow("b1", "u1"))}
	repo := newTestRepo(t, fake)

	require.NoError(t, repo.Delete(context.Background(), "b1", "u1"))

	req := fake.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "eq.b1", req.Query.Get("id"))
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))
}

func TestDeleteMissingRowIsNotFound(t *testing.T) {
	fake := &fakePostgREST{respond: respondRows()}
	repo := newTestRepo(t, fake)

	assert.ErrorIs(t, repo.Delete(context.Background(), "b1", "u2"), ErrNotFound)
}
