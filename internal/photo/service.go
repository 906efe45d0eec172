package photo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/photoshare/service/internal/apperr"
	"github.com/photoshare/service/internal/storage"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500

	// DefaultPageLimit is used when the caller supplies no usable limit.
	DefaultPageLimit = 20
)

// Page is one window of photos plus the exact total count of rows matching
// the same filter. It is transient: produced per call, consumed once.
// Whether more pages exist is the caller's derived fact
// (items seen so far < TotalCount).
type Page struct {
	Items      []Photo `json:"items"`
	TotalCount int64   `json:"totalCount"`
}

// Service orchestrates the media-commit workflow and feed pagination. It is
// stateless across calls; the stores carry all shared state.
type Service struct {
	store Store
	blobs storage.Storage
}

// NewService creates a new photo Service.
func NewService(store Store, blobs storage.Storage) *Service {
	return &Service{store: store, blobs: blobs}
}

// Commit uploads the blob and persists its metadata row. A success return
// means both the blob and the row exist and the row is the unique reference
// to that blob. A failure return means no row exists; a blob written before
// a failed insert is deleted best-effort, and a failed delete is logged (the
// orphaned blob is a bounded leak, never a dangling row).
//
// There are no automatic retries anywhere in here: retrying the upload or
// the insert risks duplicate blobs or ambiguous row state, so partial
// failure is surfaced and retry policy stays with the caller.
func (s *Service) Commit(ctx context.Context, ownerID string, blob Blob, title string, description *string) (*Photo, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.KindInvalidMetadata, "owner identity is required")
	}
	if title == "" {
		return nil, apperr.New(apperr.KindInvalidMetadata, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, apperr.New(apperr.KindInvalidMetadata, "title exceeds 100 characters")
	}
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLen {
		return nil, apperr.New(apperr.KindInvalidMetadata, "description exceeds 500 characters")
	}
	if err := ValidateBlob(blob); err != nil {
		return nil, err
	}

	key := blobKey(ownerID, blob.Filename)
	if err := s.blobs.Upload(ctx, key, blob.Reader, blob.Size, blob.ContentType); err != nil {
		if errors.Is(err, storage.ErrKeyExists) {
			return nil, apperr.Wrap(apperr.KindStorageConflict, "storage key collision", err)
		}
		return nil, apperr.Wrap(apperr.KindUploadFailed, "upload photo", err)
	}

	p, err := s.store.Insert(ctx, ownerID, s.blobs.PublicURL(key), title, description)
	if err != nil {
		compensated := true
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			// Orphaned blob: reachable but unreferenced. Operator cleanup.
			compensated = false
			log.Printf("photo: compensating delete failed, orphaned blob %q: %v", key, delErr)
		}
		return nil, &apperr.Error{
			Kind:        apperr.KindMetadataPersistFailed,
			Message:     "persist photo metadata",
			Cause:       err,
			Compensated: compensated,
		}
	}
	return p, nil
}

// FetchPage returns one feed window. Pages are 1-based; out-of-range inputs
// are clamped. Each call is a fresh stateless range read.
func (s *Service) FetchPage(ctx context.Context, ownerID *string, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	items, total, err := s.store.ListPage(ctx, ownerID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch photo page: %w", err)
	}
	if items == nil {
		items = []Photo{}
	}
	return &Page{Items: items, TotalCount: total}, nil
}

// blobKey derives a storage key scoped under the owner and unique per
// upload: millisecond timestamp plus a uuid nonce, keeping the original
// file extension. Concurrent same-instant uploads by one owner therefore
// never collide.
func blobKey(ownerID, filename string) string {
	return fmt.Sprintf("%s/%d-%s%s", ownerID, time.Now().UnixMilli(), uuid.NewString(), path.Ext(filename))
}
