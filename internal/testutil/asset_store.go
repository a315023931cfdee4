// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
)

// UploadCall records one Upload invocation on MemoryAssetStore.
type UploadCall struct {
	Bucket      string
	Key         string
	ContentType string
	Size        int
}

// MemoryAssetStore is an in-memory AssetStore with per-bucket failure injection.
type MemoryAssetStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	calls   []UploadCall
	failOn  map[string]error
}

// NewMemoryAssetStore creates an empty in-memory asset store.
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{
		objects: make(map[string][]byte),
		failOn:  make(map[string]error),
	}
}

// FailBucket makes every later upload into bucket return err.
func (s *MemoryAssetStore) FailBucket(bucket string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[bucket] = err
}

// Upload stores body under bucket/key unless a failure was injected for bucket.
func (s *MemoryAssetStore) Upload(_ context.Context, bucket, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, UploadCall{Bucket: bucket, Key: key, ContentType: contentType, Size: len(body)})
	if err, ok := s.failOn[bucket]; ok {
		return err
	}
	path := bucket + "/" + key
	if _, exists := s.objects[path]; exists {
		return fmt.Errorf("object %s already exists", path)
	}
	s.objects[path] = append([]byte(nil), body...)
	return nil
}

// PublicURL returns a deterministic fake URL for bucket/key.
func (s *MemoryAssetStore) PublicURL(bucket, key string) string {
	return "https://assets.test/" + bucket + "/" + key
}

// Calls returns every recorded upload attempt in order, failed ones included.
func (s *MemoryAssetStore) Calls() []UploadCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UploadCall(nil), s.calls...)
}

// Object returns the stored bytes for bucket/key.
func (s *MemoryAssetStore) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[bucket+"/"+key]
	return b, ok
}

// Len returns how many objects are stored.
func (s *MemoryAssetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// PNGBytes returns a tiny valid PNG image.
func PNGBytes() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// PDFBytes returns a minimal PDF-looking document body.
func PDFBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
}
