// Package photo implements the media-commit workflow and the paginated feed:
// uploads are validated, written to object storage, and committed as a
// metadata row, with a compensating blob delete when the row write fails.
package photo

import (
	"io"
	"strings"

	"github.com/photoshare/service/internal/apperr"
)

// MaxBlobBytes is the upload size ceiling (10 MiB).
const MaxBlobBytes = 10 * 1024 * 1024

// Blob describes an upload before any side effect happens.
type Blob struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// ValidateBlob applies the pre-flight constraints in order, first failure
// wins. It is a pure function of the descriptor and has no side effects.
func ValidateBlob(b Blob) error {
	if !strings.HasPrefix(b.ContentType, "image/") {
		return apperr.New(apperr.KindUnsupportedMediaType, "file must be an image")
	}
	if b.Size > MaxBlobBytes {
		return apperr.New(apperr.KindPayloadTooLarge, "file size must be at most 10MB")
	}
	return nil
}
