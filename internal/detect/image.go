package detect

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
)

// FileImageLoader loads and decodes photos from the local filesystem.
type FileImageLoader struct{}

// NewFileImageLoader creates the default loader.
func NewFileImageLoader() *FileImageLoader {
	return &FileImageLoader{}
}

// Load decodes the photo at its path. A missing file yields ErrNotFound so
// the pipeline can log and drop the photo without special-casing.
func (l *FileImageLoader) Load(ctx context.Context, photo Photo) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(photo.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("photo %s at %s: %w", photo.ID, photo.Path, ErrNotFound)
		}
		return nil, fmt.Errorf("opening photo %s: %w", photo.ID, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding photo %s: %w", photo.ID, err)
	}
	return img, nil
}
