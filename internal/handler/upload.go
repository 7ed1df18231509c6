package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize caps cover image uploads at 10 MiB.
const MaxUploadSize = 10 << 20

// ObjectStore abstracts the cover image bucket.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// UploadHandler serves POST /books/img-upload.
type UploadHandler struct {
	store ObjectStore
}

// NewUploadHandler creates an UploadHandler backed by store.
func NewUploadHandler(store ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadResponse names the stored object and where to fetch it.
type UploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Upload stores the multipart "file" field under a random key. The key is a
// UUID plus the original extension; two uploads can never collide, unlike a
// timestamp-based key.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if len(data) > MaxUploadSize {
		abortDetail(c, http.StatusBadRequest, "file exceeds the 10MB upload limit")
		return
	}

	key := uuid.NewString() + objectExt(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if err := h.store.Upload(c.Request.Context(), key, data, contentType); err != nil {
		abortDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Filename: key,
		URL:      h.store.PublicURL(key),
	})
}

func objectExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return ext
}
