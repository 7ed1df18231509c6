package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// Storage returns a client for one Storage bucket.
func (c *Client) Storage(bucket string) *Bucket {
	return &Bucket{client: c, bucket: bucket}
}

// Bucket handles object operations within a single bucket.
type Bucket struct {
	client *Client
	bucket string
}

// Upload stores an object under path. Uploads do not upsert: a second write
// to the same path is rejected by Storage.
func (b *Bucket) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", b.client.baseURL, b.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("supabase: create request: %w", err)
	}
	b.client.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	_, err = b.client.do(req)
	return err
}

// PublicURL returns the unauthenticated retrieval URL for an object.
// The bucket must be marked public in the Supabase project.
func (b *Bucket) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.client.baseURL, b.bucket, path)
}
