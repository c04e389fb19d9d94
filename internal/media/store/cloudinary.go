package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores media in a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds a client for the given account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	res, err := c.cld.Upload.Upload(ctx, req.Body, uploader.UploadParams{
		PublicID:     req.PublicID,
		Folder:       req.Folder,
		ResourceType: req.ResourceType,
	})
	if err != nil {
		return nil, err
	}
	if res.Error.Message != "" {
		return nil, errors.New(res.Error.Message)
	}
	out := &UploadResult{
		PublicID:     res.PublicID,
		SecureURL:    res.SecureURL,
		Format:       res.Format,
		ResourceType: res.ResourceType,
		Bytes:        int64(res.Bytes),
	}
	if res.ResourceType == "video" {
		out.ThumbnailURL = videoThumbnail(res.SecureURL)
	}
	return out, nil
}

func (c *Cloudinary) List(ctx context.Context, req ListRequest) (*ListPage, error) {
	res, err := c.cld.Admin.Assets(ctx, admin.AssetsParams{
		AssetType:    api.AssetType(req.ResourceType),
		DeliveryType: "upload",
		Prefix:       req.Prefix,
		MaxResults:   req.MaxResults,
		NextCursor:   req.Cursor,
	})
	if err != nil {
		return nil, err
	}
	if res.Error.Message != "" {
		return nil, errors.New(res.Error.Message)
	}
	page := &ListPage{NextCursor: res.NextCursor, Objects: make([]Object, 0, len(res.Assets))}
	for _, a := range res.Assets {
		page.Objects = append(page.Objects, Object{
			PublicID:     a.PublicID,
			SecureURL:    a.SecureURL,
			ResourceType: a.AssetType,
			Format:       a.Format,
			Bytes:        int64(a.Bytes),
			CreatedAt:    a.CreatedAt,
		})
	}
	return page, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID, resourceType string) (string, error) {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	return res.Result, nil
}

// videoThumbnail points at the first frame of a video delivered as jpg.
func videoThumbnail(secureURL string) string {
	if secureURL == "" {
		return ""
	}
	return strings.TrimSuffix(secureURL, path.Ext(secureURL)) + ".jpg"
}
