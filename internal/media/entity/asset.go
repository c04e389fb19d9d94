package entity

import (
	"strings"
	"time"
)

// Kind is the coarse media category of an asset.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Kinds lists every kind in listing order.
var Kinds = []Kind{KindImage, KindVideo}

// KindFromMIME classifies by declared MIME type; anything not video/* is an image.
func KindFromMIME(mime string) Kind {
	if strings.HasPrefix(strings.ToLower(mime), "video/") {
		return KindVideo
	}
	return KindImage
}

// Folder is the storage folder assets of this kind are uploaded to.
func (k Kind) Folder() string { return "uploads/" + string(k) + "s" }

// Prefix is the listing prefix for assets of this kind.
func (k Kind) Prefix() string { return k.Folder() + "/" }

// Uploaded is the normalized result of an upload.
type Uploaded struct {
	PublicID     string `json:"publicId"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Format       string `json:"format"`
	ResourceType string `json:"resourceType"`
	Bytes        int64  `json:"bytes"`
}

// Asset is one entry of a media listing.
type Asset struct {
	PublicID     string    `json:"publicId"`
	URL          string    `json:"url"`
	ResourceType string    `json:"resourceType"`
	Format       string    `json:"format"`
	Bytes        int64     `json:"bytes"`
	CreatedAt    time.Time `json:"createdAt"`
}
