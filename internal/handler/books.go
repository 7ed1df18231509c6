package handler

import (
	"errors"
	"net/http"
	"time"

	"book-tracker/backend/internal/middleware"
	"book-tracker/backend/internal/model"
	"book-tracker/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// BookHandler serves the /books endpoints.
type BookHandler struct {
	repo repository.BookRepository
}

// NewBookHandler creates a BookHandler backed by repo.
func NewBookHandler(repo repository.BookRepository) *BookHandler {
	return &BookHandler{repo: repo}
}

// Register mounts the book routes on rg.
func (h *BookHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.PUT("/:id/notes", h.UpdateNotes)
	rg.PUT("/:id/status", h.UpdateStatus)
	rg.PUT("/:id/complete", h.Complete)
	rg.DELETE("/:id", h.Delete)
}

// CreateBookRequest mirrors the caller-settable book fields. Title, author
// and status are mandatory at creation.
type CreateBookRequest struct {
	Title        string     `json:"title" binding:"required"`
	Author       string     `json:"author" binding:"required"`
	Status       string     `json:"status" binding:"required"`
	Category     *string    `json:"category"`
	CoverImage   *string    `json:"cover_image"`
	Notes        *string    `json:"notes"`
	LastReadDate *time.Time `json:"last_read_date"`
}

// NotesUpdateRequest updates reading notes.
type NotesUpdateRequest struct {
	Notes        *string    `json:"notes"`
	LastReadDate *time.Time `json:"last_read_date"`
}

// StatusUpdateRequest updates the lifecycle label. A caller-supplied
// updated_at wins over server time.
type StatusUpdateRequest struct {
	Status    *string    `json:"status"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// CompleteRequest finalizes notes. A non-empty status marks the book
// 読了(ノート完成); an absent or empty one clears the status.
type CompleteRequest struct {
	Notes        *string    `json:"notes"`
	Status       *string    `json:"status"`
	LastReadDate *time.Time `json:"last_read_date"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

func (h *BookHandler) List(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	books, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Get(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	book, err := h.repo.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Create(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.repo.Create(c.Request.Context(), userID, model.BookCreate{
		Title:        req.Title,
		Author:       req.Author,
		Status:       req.Status,
		Category:     req.Category,
		CoverImage:   req.CoverImage,
		Notes:        req.Notes,
		LastReadDate: req.LastReadDate,
	})
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) Update(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	var req model.BookUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.repo.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) UpdateNotes(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	var req NotesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.repo.UpdateNotes(c.Request.Context(), c.Param("id"), userID, req.Notes, req.LastReadDate)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.repo.UpdateStatus(c.Request.Context(), c.Param("id"), userID, req.Status, req.UpdatedAt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Complete(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	completed := req.Status != nil && *req.Status != ""
	book, err := h.repo.Complete(c.Request.Context(), c.Param("id"), userID, req.Notes, completed, req.LastReadDate, req.UpdatedAt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Delete(c *gin.Context) {
	userID := c.GetHeader(middleware.UserIDHeader)

	if err := h.repo.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
}

func (h *BookHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		abortDetail(c, http.StatusNotFound, "Book not found")
		return
	}
	abortDetail(c, http.StatusInternalServerError, err.Error())
}
