// Package media uploads product images to the image host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"pink-basket/pkg/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned by uploads when no image host credentials are set.
var ErrNotConfigured = errors.New("image host not configured")

// Uploader stores an image and returns its durable public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// New returns a Cloudinary uploader, or one that always fails when the
// credentials are missing.
func New(cfg *config.Config) (Uploader, error) {
	if cfg.Media.CloudName == "" {
		return Unconfigured{}, nil
	}
	return NewCloudinary(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.Folder)
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     assetID(filename),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("cloudinary upload: empty url")
	}
	return resp.SecureURL, nil
}

// PublicID derives a URL-safe slug from an uploaded filename.
func PublicID(filename string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, "\\", "/")), path.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// assetID suffixes the slug so two uploads named "cake.jpg" never overwrite
// each other.
func assetID(filename string) string {
	suffix := uuid.NewString()[:8]
	if slug := PublicID(filename); slug != "" {
		return slug + "-" + suffix
	}
	return suffix
}

type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}
