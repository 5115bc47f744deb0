package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"veostudio/internal/models"
)

// MaxReferenceImageBytes bounds what LoadFile and LoadBase64 accept.
const MaxReferenceImageBytes = 20 << 20

// ImageService turns user-picked files into reference images. The MIME type
// is detected from content, never from the file name.
type ImageService interface {
	Startup(ctx context.Context)
	LoadFile(path string) (*models.ImageFile, error)
	LoadBytes(name string, data []byte) (*models.ImageFile, error)
	LoadBase64(name, encoded string) (*models.ImageFile, error)
}

type imageService struct {
	ctx context.Context
}

func NewImageService() ImageService {
	return &imageService{}
}

func (s *imageService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *imageService) LoadFile(path string) (*models.ImageFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("image path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if info.Size() > MaxReferenceImageBytes {
		return nil, fmt.Errorf("image %s is larger than %d MB", filepath.Base(path), MaxReferenceImageBytes>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return s.LoadBytes(filepath.Base(path), data)
}

func (s *imageService) LoadBytes(name string, data []byte) (*models.ImageFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image %q is empty", name)
	}
	if len(data) > MaxReferenceImageBytes {
		return nil, fmt.Errorf("image %q is larger than %d MB", name, MaxReferenceImageBytes>>20)
	}
	detected := mimetype.Detect(data)
	if !isImage(detected) {
		return nil, fmt.Errorf("%w (%s)", models.ErrUnknownImageType, detected.String())
	}
	img := &models.ImageFile{
		Bytes:    data,
		MIMEType: detected.String(),
		Filename: name,
	}
	return img, img.Validate()
}

// LoadBase64 accepts raw base64 or a data URL as produced by a browser FileReader.
func (s *imageService) LoadBase64(name, encoded string) (*models.ImageFile, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return s.LoadBytes(name, data)
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
