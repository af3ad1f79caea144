package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/anonto42/foodreels/backend/pkg/config"
	"github.com/imagekit-developer/imagekit-go"
	"github.com/imagekit-developer/imagekit-go/api/uploader"
)

// uploadTimeout bounds a single upload; large videos need the room.
const uploadTimeout = 2 * time.Minute

// ImageKitProvider uploads files with the ImageKit SDK.
type ImageKitProvider struct {
	ik          *imagekit.ImageKit
	urlEndpoint string
}

// NewImageKitProvider creates an ImageKit backend. A non-empty UploadPrefix
// replaces the SDK's upload API base URL.
func NewImageKitProvider(cfg config.ImageKitConfig) (*ImageKitProvider, error) {
	if cfg.PrivateKey == "" {
		return nil, errors.New("ImageKit private key is required")
	}

	ik := imagekit.NewFromParams(imagekit.NewParams{
		PrivateKey:  cfg.PrivateKey,
		PublicKey:   cfg.PublicKey,
		UrlEndpoint: cfg.URLEndpoint,
	})
	if cfg.UploadPrefix != "" {
		ik.Uploader.Config.UploadPrefix = strings.TrimRight(cfg.UploadPrefix, "/") + "/"
	}

	return &ImageKitProvider{
		ik:          ik,
		urlEndpoint: strings.TrimRight(cfg.URLEndpoint, "/"),
	}, nil
}

func (p *ImageKitProvider) Name() string { return "imagekit" }

// Upload sends data base64 encoded. The key's directory becomes the ImageKit
// folder and its base name the file name. ImageKit derives the content type
// from the file itself.
func (p *ImageKitProvider) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	folder, fileName := path.Split(key)
	resp, err := p.ik.Uploader.Upload(ctx, base64.StdEncoding.EncodeToString(data), uploader.UploadParam{
		FileName: fileName,
		Folder:   "/" + strings.Trim(folder, "/"),
	})
	if err != nil {
		return "", fmt.Errorf("ImageKit upload of %s (%s) failed: %w", key, contentType, err)
	}

	if resp.Data.Url != "" {
		return resp.Data.Url, nil
	}
	if resp.Data.FilePath != "" && p.urlEndpoint != "" {
		return p.urlEndpoint + resp.Data.FilePath, nil
	}
	return "", errors.New("ImageKit response did not include a file URL")
}
