// Package media brokers uploads, listings and deletions to a remote object store.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/media/entity"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/media/store"
	"github.com/ovaphlow/pitchfork/service-media-go/pkg/utilities"
)

// PageSize is the number of objects fetched per kind and page.
const PageSize = 100

var whitespace = regexp.MustCompile(`\s`)

// File is an uploaded file buffered in memory.
type File struct {
	Data []byte
	Name string
	MIME string
}

// Listing is one page of media across all kinds.
type Listing struct {
	Media      []entity.Asset `json:"media"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// Service is the media gateway.
type Service struct {
	store     store.ObjectStore
	logger    *zap.SugaredLogger
	newSuffix func() string
	now       func() time.Time
}

func NewService(s store.ObjectStore, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:     s,
		logger:    logger,
		newSuffix: utilities.NewKSUID,
		now:       time.Now,
	}
}

// ObjectKey builds "{kind}_{unixMillis}_{stem}_{suffix}" where stem is the
// file name without extension and with whitespace replaced by underscores.
func ObjectKey(kind entity.Kind, name string, at time.Time, suffix string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "." || stem == "/" {
		stem = ""
	}
	stem = whitespace.ReplaceAllString(stem, "_")
	return string(kind) + "_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + stem + "_" + suffix
}

// Upload stores f under the folder of its kind.
func (s *Service) Upload(ctx context.Context, f File) (*entity.Uploaded, error) {
	if len(f.Data) == 0 {
		return nil, apperr.Validation("No file uploaded.")
	}
	kind := entity.KindFromMIME(f.MIME)
	key := ObjectKey(kind, f.Name, s.now(), s.newSuffix())
	res, err := s.store.Upload(ctx, store.UploadRequest{
		PublicID:     key,
		Folder:       kind.Folder(),
		ResourceType: string(kind),
		ContentType:  f.MIME,
		Size:         int64(len(f.Data)),
		Body:         bytes.NewReader(f.Data),
	})
	if err != nil {
		return nil, apperr.Upstream("Error uploading file to the object store.", err)
	}
	thumb := res.SecureURL
	if kind == entity.KindVideo && res.ThumbnailURL != "" {
		thumb = res.ThumbnailURL
	}
	s.logger.Infow("media uploaded", "publicId", res.PublicID, "kind", kind, "bytes", res.Bytes)
	return &entity.Uploaded{
		PublicID:     res.PublicID,
		URL:          res.SecureURL,
		ThumbnailURL: thumb,
		Format:       res.Format,
		ResourceType: res.ResourceType,
		Bytes:        res.Bytes,
	}, nil
}

// listCursor continues a listing per kind. A kind with an empty entry is
// exhausted; a nil cursor starts every kind from the beginning.
type listCursor struct {
	Image string `json:"i,omitempty"`
	Video string `json:"v,omitempty"`
}

func decodeCursor(raw string) (*listCursor, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	var c listCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if c.Image == "" && c.Video == "" {
		return nil, fmt.Errorf("empty cursor")
	}
	return &c, nil
}

func (c *listCursor) encode() string {
	if c.Image == "" && c.Video == "" {
		return ""
	}
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (c *listCursor) get(k entity.Kind) (string, bool) {
	if c == nil {
		return "", true
	}
	v := c.Video
	if k == entity.KindImage {
		v = c.Image
	}
	return v, v != ""
}

func (c *listCursor) set(k entity.Kind, v string) {
	if k == entity.KindImage {
		c.Image = v
		return
	}
	c.Video = v
}

// List fetches one page per kind concurrently and merges images before videos.
func (s *Service) List(ctx context.Context, rawCursor string) (*Listing, error) {
	cur, err := decodeCursor(rawCursor)
	if err != nil {
		return nil, apperr.Validation("Invalid cursor.")
	}

	pages := make([]*store.ListPage, len(entity.Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range entity.Kinds {
		after, ok := cur.get(kind)
		if !ok {
			continue
		}
		g.Go(func() error {
			page, err := s.store.List(gctx, store.ListRequest{
				ResourceType: string(kind),
				Prefix:       kind.Prefix(),
				MaxResults:   PageSize,
				Cursor:       after,
			})
			if err != nil {
				return fmt.Errorf("list %s: %w", kind, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Upstream("Error fetching media.", err)
	}

	out := &Listing{Media: []entity.Asset{}}
	var next listCursor
	for i, page := range pages {
		if page == nil {
			continue
		}
		next.set(entity.Kinds[i], page.NextCursor)
		for _, o := range page.Objects {
			out.Media = append(out.Media, entity.Asset{
				PublicID:     o.PublicID,
				URL:          o.SecureURL,
				ResourceType: o.ResourceType,
				Format:       o.Format,
				Bytes:        o.Bytes,
				CreatedAt:    o.CreatedAt,
			})
		}
	}
	out.NextCursor = next.encode()
	return out, nil
}

// Delete destroys publicID in the store. A result other than "ok" is
// rejected with the raw result attached.
func (s *Service) Delete(ctx context.Context, publicID, resourceType string) (string, error) {
	publicID = strings.TrimSpace(publicID)
	resourceType = strings.TrimSpace(resourceType)
	if publicID == "" {
		return "", apperr.Validation("Missing publicId in request body.")
	}
	if resourceType == "" {
		return "", apperr.Validation("Missing resourceType in request body.")
	}
	result, err := s.store.Destroy(ctx, publicID, resourceType)
	if err != nil {
		return "", apperr.Upstream("Error deleting file from the object store.", err)
	}
	if result != store.ResultOK {
		return "", apperr.Rejected("Failed to delete the file from the object store.", map[string]string{"result": result})
	}
	s.logger.Infow("media deleted", "publicId", publicID, "kind", resourceType)
	return publicID, nil
}
