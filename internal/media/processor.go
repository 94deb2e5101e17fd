package media

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/sushilghimire07/Social-Media-App/pkg/storage"
)

// Presign lifetime for stores without a public base URL.
const urlExpiry = 7 * 24 * time.Hour

// ImageProcessor downscales uploaded images and writes them to storage.
type ImageProcessor struct {
	storage     storage.Storage
	maxWidth    int
	jpegQuality int
}

func NewImageProcessor(store storage.Storage, maxWidth, jpegQuality int) *ImageProcessor {
	if maxWidth <= 0 {
		maxWidth = 1280
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 85
	}
	return &ImageProcessor{
		storage:     store,
		maxWidth:    maxWidth,
		jpegQuality: jpegQuality,
	}
}

// ProcessUpload decodes the uploaded image, downscales it to the configured
// max width when wider, encodes it as JPEG and stores it under
// "{kind}/{userID}/{uuid}.jpg". Returns the public URL of the stored object.
func (p *ImageProcessor) ProcessUpload(ctx context.Context, file *multipart.FileHeader, kind, userID string) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.jpegQuality)); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.jpg", kind, userID, uuid.NewString())
	if err := p.storage.Write(ctx, key, &buf, int64(buf.Len()), "image/jpeg"); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	return p.storage.GetURL(ctx, key, urlExpiry)
}

// StoreRaw stores an upload without transformation, keeping its original
// extension. Used for video story media where re-encoding is out of scope.
func (p *ImageProcessor) StoreRaw(ctx context.Context, file *multipart.FileHeader, kind, userID string) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".bin"
	}
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s/%s%s", kind, userID, uuid.NewString(), ext)
	if err := p.storage.Write(ctx, key, f, file.Size, contentType); err != nil {
		return "", fmt.Errorf("store media: %w", err)
	}

	return p.storage.GetURL(ctx, key, urlExpiry)
}

// DeleteByURL removes a stored object given its public URL. Unknown URLs are
// ignored so callers can pass through user-provided values.
func (p *ImageProcessor) DeleteByURL(ctx context.Context, url string) error {
	key, ok := p.storage.KeyFromURL(url)
	if !ok {
		return nil
	}
	return p.storage.Delete(ctx, key)
}
