package uploader

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded image bytes under a generated filename. How the
// stored filename maps to a public URL is the caller's concern (the API layer
// prefixes a configured base URL).
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) error
	Remove(ctx context.Context, filename string) error
}

// Filename generates a collision-free stored name for an upload, keeping the
// original extension. Random UUIDs replace the wall-clock timestamps that
// collide for uploads landing in the same microsecond.
func Filename(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return uuid.New().String() + ext
}
