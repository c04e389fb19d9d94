package store

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds connection settings for an S3 compatible store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base asset URLs are built on; defaults to the endpoint.
	PublicURL string
}

// Minio stores media in a MinIO/S3 bucket. Object names are Folder/PublicID.
type Minio struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinio connects to MinIO and ensures the bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &Minio{client: client, bucket: cfg.Bucket, baseURL: publicBase(cfg)}, nil
}

func publicBase(cfg MinioConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}

func (m *Minio) objectURL(name string) string {
	return m.baseURL + "/" + m.bucket + "/" + (&url.URL{Path: name}).EscapedPath()
}

func (m *Minio) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	name := path.Join(req.Folder, req.PublicID)
	info, err := m.client.PutObject(ctx, m.bucket, name, req.Body, req.Size, minio.PutObjectOptions{
		ContentType:  req.ContentType,
		UserMetadata: map[string]string{"resource-type": req.ResourceType},
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return &UploadResult{
		PublicID:     name,
		SecureURL:    m.objectURL(name),
		Format:       formatOf(req.ContentType),
		ResourceType: req.ResourceType,
		Bytes:        info.Size,
	}, nil
}

// List pages with the last returned object name as cursor.
func (m *Minio) List(ctx context.Context, req ListRequest) (*ListPage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := req.MaxResults
	if limit <= 0 {
		limit = 100
	}
	page := &ListPage{}
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:     req.Prefix,
		Recursive:  true,
		StartAfter: req.Cursor,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		if len(page.Objects) == limit {
			page.NextCursor = page.Objects[limit-1].PublicID
			break
		}
		page.Objects = append(page.Objects, Object{
			PublicID:     obj.Key,
			SecureURL:    m.objectURL(obj.Key),
			ResourceType: req.ResourceType,
			Format:       strings.TrimPrefix(path.Ext(obj.Key), "."),
			Bytes:        obj.Size,
			CreatedAt:    obj.LastModified,
		})
	}
	return page, nil
}

func (m *Minio) Destroy(ctx context.Context, publicID, resourceType string) (string, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, publicID, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ResultNotFound, nil
		}
		return "", fmt.Errorf("stat object: %w", err)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return "", fmt.Errorf("delete object: %w", err)
	}
	return ResultOK, nil
}

// formatOf derives a file format from a MIME subtype, "image/svg+xml" -> "svg".
func formatOf(contentType string) string {
	_, sub, ok := strings.Cut(contentType, "/")
	if !ok {
		return ""
	}
	sub, _, _ = strings.Cut(sub, ";")
	sub, _, _ = strings.Cut(sub, "+")
	return strings.TrimSpace(sub)
}
