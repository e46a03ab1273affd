package uploader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps uploads in a Cloudinary folder. The stored filename
// doubles as the public ID (extension stripped, as Cloudinary tracks format
// itself).
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

func (s *CloudinaryStore) publicID(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if s.folder == "" {
		return name
	}
	return s.folder + "/" + name
}

func (s *CloudinaryStore) Save(ctx context.Context, filename string, r io.Reader) error {
	_, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  s.publicID(filename),
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return fmt.Errorf("cloudinary upload: %w", err)
	}
	return nil
}

func (s *CloudinaryStore) Remove(ctx context.Context, filename string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: s.publicID(filename),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
