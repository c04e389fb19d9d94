// Package store adapts remote object stores to the media gateway.
package store

import (
	"context"
	"io"
	"time"
)

// Destroy results reported by a store.
const (
	ResultOK       = "ok"
	ResultNotFound = "not found"
)

// UploadRequest describes one object to store under Folder/PublicID.
type UploadRequest struct {
	PublicID     string
	Folder       string
	ResourceType string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// UploadResult is what the store reports for a stored object.
type UploadResult struct {
	PublicID     string
	SecureURL    string
	ThumbnailURL string
	Format       string
	ResourceType string
	Bytes        int64
}

// ListRequest asks for one page of objects under Prefix.
type ListRequest struct {
	ResourceType string
	Prefix       string
	MaxResults   int
	Cursor       string
}

// Object is a stored object as listed by the store.
type Object struct {
	PublicID     string
	SecureURL    string
	ResourceType string
	Format       string
	Bytes        int64
	CreatedAt    time.Time
}

// ListPage is one page of a listing; NextCursor is empty on the last page.
type ListPage struct {
	Objects    []Object
	NextCursor string
}

// ObjectStore is the remote object store port. Every call blocks until the
// store answers or ctx is done.
type ObjectStore interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	List(ctx context.Context, req ListRequest) (*ListPage, error)
	// Destroy removes publicID and returns the store's raw result, ResultOK on success.
	Destroy(ctx context.Context, publicID, resourceType string) (string, error)
}
