package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/photoshare/service/internal/apperr"
	"github.com/photoshare/service/internal/storage"
)

// fakeBlobStore is an in-memory storage.Storage with fault injection.
type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if _, ok := f.objects[key]; ok {
		return storage.ErrKeyExists
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobStore) PublicURL(key string) string {
	return "http://blobs.test/" + key
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// fakePhotoStore is an in-memory Store with fault injection.
type fakePhotoStore struct {
	mu        sync.Mutex
	photos    []Photo
	seq       int
	insertErr error
}

func (f *fakePhotoStore) Insert(_ context.Context, ownerID, imageURL, title string, description *string) (*Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.seq++
	p := Photo{
		ID:          fmt.Sprintf("%08d", f.seq),
		OwnerID:     ownerID,
		ImageURL:    imageURL,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}
	f.photos = append(f.photos, p)
	return &p, nil
}

func (f *fakePhotoStore) ListPage(_ context.Context, ownerID *string, offset, limit int) ([]Photo, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matching := []Photo{}
	for _, p := range f.photos {
		if ownerID == nil || p.OwnerID == *ownerID {
			matching = append(matching, p)
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].CreatedAt.After(matching[j].CreatedAt)
		}
		return matching[i].ID > matching[j].ID
	})

	total := int64(len(matching))
	if offset >= len(matching) {
		return []Photo{}, total, nil
	}
	end := offset + limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[offset:end], total, nil
}

func newService() (*Service, *fakePhotoStore, *fakeBlobStore) {
	store := &fakePhotoStore{}
	blobs := newFakeBlobStore()
	return NewService(store, blobs), store, blobs
}

func testBlob() Blob {
	return Blob{
		Reader:      strings.NewReader("jpeg bytes"),
		Size:        10,
		ContentType: "image/jpeg",
		Filename:    "sunset.jpg",
	}
}

func TestCommitRejectsNonImageWithoutSideEffects(t *testing.T) {
	svc, store, blobs := newService()

	blob := testBlob()
	blob.ContentType = "text/plain"
	_, err := svc.Commit(context.Background(), "alice", blob, "a title", nil)

	require.Equal(t, apperr.KindUnsupportedMediaType, apperr.KindOf(err))
	require.Zero(t, blobs.count())
	require.Empty(t, store.photos)
}

func TestCommitRejectsOversizeWithoutSideEffects(t *testing.T) {
	svc, store, blobs := newService()

	blob := testBlob()
	blob.Size = MaxBlobBytes + 1
	_, err := svc.Commit(context.Background(), "alice", blob, "a title", nil)

	require.Equal(t, apperr.KindPayloadTooLarge, apperr.KindOf(err))
	require.Zero(t, blobs.count())
	require.Empty(t, store.photos)
}

func TestCommitTitleBoundary(t *testing.T) {
	svc, _, _ := newService()

	p, err := svc.Commit(context.Background(), "alice", testBlob(), strings.Repeat("x", 100), nil)
	require.NoError(t, err)
	require.Len(t, p.Title, 100)

	_, err = svc.Commit(context.Background(), "alice", testBlob(), strings.Repeat("x", 101), nil)
	require.Equal(t, apperr.KindInvalidMetadata, apperr.KindOf(err))
}

func TestCommitRequiresOwnerAndTitle(t *testing.T) {
	svc, _, blobs := newService()

	_, err := svc.Commit(context.Background(), "", testBlob(), "a title", nil)
	require.Equal(t, apperr.KindInvalidMetadata, apperr.KindOf(err))

	_, err = svc.Commit(context.Background(), "alice", testBlob(), "", nil)
	require.Equal(t, apperr.KindInvalidMetadata, apperr.KindOf(err))

	require.Zero(t, blobs.count())
}

func TestCommitRejectsOverlongDescription(t *testing.T) {
	svc, _, _ := newService()

	desc := strings.Repeat("d", 501)
	_, err := svc.Commit(context.Background(), "alice", testBlob(), "a title", &desc)
	require.Equal(t, apperr.KindInvalidMetadata, apperr.KindOf(err))
}

func TestCommitSuccessStoresBlobAndRow(t *testing.T) {
	svc, store, blobs := newService()

	desc := "golden hour"
	p, err := svc.Commit(context.Background(), "alice", testBlob(), "sunset", &desc)

	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "alice", p.OwnerID)
	require.Equal(t, "sunset", p.Title)
	require.Equal(t, &desc, p.Description)
	require.True(t, strings.HasPrefix(p.ImageURL, "http://blobs.test/alice/"))
	require.True(t, strings.HasSuffix(p.ImageURL, ".jpg"))
	require.Equal(t, 1, blobs.count())
	require.Len(t, store.photos, 1)
}

func TestCommitUploadFailureLeavesNoRowAndNoCompensation(t *testing.T) {
	svc, store, blobs := newService()
	blobs.uploadErr = errors.New("connection refused")

	_, err := svc.Commit(context.Background(), "alice", testBlob(), "a title", nil)

	require.Equal(t, apperr.KindUploadFailed, apperr.KindOf(err))
	require.Empty(t, store.photos)
	require.Empty(t, blobs.deleted)
}

func TestCommitKeyCollisionSurfacesConflict(t *testing.T) {
	svc, store, blobs := newService()
	blobs.uploadErr = storage.ErrKeyExists

	_, err := svc.Commit(context.Background(), "alice", testBlob(), "a title", nil)

	require.Equal(t, apperr.KindStorageConflict, apperr.KindOf(err))
	require.Empty(t, store.photos)
	require.Empty(t, blobs.deleted)
}

func TestCommitCompensatesWhenInsertFails(t *testing.T) {
	svc, store, blobs := newService()
	store.insertErr = errors.New("deadlock detected")

	_, err := svc.Commit(context.Background(), "alice", testBlob(), "a title", nil)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, apperr.KindMetadataPersistFailed, e.Kind)
	require.True(t, e.Compensated)
	// The compensating delete removed the blob written in this attempt,
	// and no row references it.
	require.Zero(t, blobs.count())
	require.Len(t, blobs.deleted, 1)
	require.Empty(t, store.photos)
}

func TestCommitReportsFailedCompensation(t *testing.T) {
	svc, store, blobs := newService()
	store.insertErr = errors.New("deadlock detected")
	blobs.deleteErr = errors.New("access denied")

	_, err := svc.Commit(context.Background(), "alice", testBlob(), "a title", nil)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, apperr.KindMetadataPersistFailed, e.Kind)
	require.False(t, e.Compensated)
	// The delete failure does not mask the original insert error.
	require.ErrorContains(t, e.Cause, "deadlock")
	// The blob is orphaned but no row points at it.
	require.Equal(t, 1, blobs.count())
	require.Empty(t, store.photos)
}

func TestCommitRoundTripThroughFetchPage(t *testing.T) {
	svc, _, _ := newService()

	desc := "from the pier"
	committed, err := svc.Commit(context.Background(), "alice", testBlob(), "sunset", &desc)
	require.NoError(t, err)

	owner := "alice"
	page, err := svc.FetchPage(context.Background(), &owner, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	require.Equal(t, committed.Title, page.Items[0].Title)
	require.Equal(t, committed.Description, page.Items[0].Description)
	require.Equal(t, committed.ImageURL, page.Items[0].ImageURL)
}

func TestFetchPageDeterministicOrderUnderTies(t *testing.T) {
	svc, store, _ := newService()

	now := time.Now().Truncate(time.Second)
	store.photos = []Photo{
		{ID: "00000001", OwnerID: "alice", CreatedAt: now},
		{ID: "00000002", OwnerID: "bob", CreatedAt: now},
		{ID: "00000003", OwnerID: "carol", CreatedAt: now.Add(-time.Second)},
	}

	for i := 0; i < 3; i++ {
		page, err := svc.FetchPage(context.Background(), nil, 1, 2)
		require.NoError(t, err)
		require.EqualValues(t, 3, page.TotalCount)
		require.Len(t, page.Items, 2)
		// Same-instant rows order by id descending.
		require.Equal(t, "00000002", page.Items[0].ID)
		require.Equal(t, "00000001", page.Items[1].ID)
	}

	page, err := svc.FetchPage(context.Background(), nil, 2, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, page.TotalCount)
	require.Len(t, page.Items, 1)
	require.Equal(t, "00000003", page.Items[0].ID)
}

func TestFetchPageFiltersByOwnerWithMatchingCount(t *testing.T) {
	svc, store, _ := newService()

	now := time.Now()
	store.photos = []Photo{
		{ID: "00000001", OwnerID: "alice", CreatedAt: now},
		{ID: "00000002", OwnerID: "bob", CreatedAt: now.Add(time.Second)},
		{ID: "00000003", OwnerID: "alice", CreatedAt: now.Add(2 * time.Second)},
	}

	owner := "alice"
	page, err := svc.FetchPage(context.Background(), &owner, 1, 1)
	require.NoError(t, err)
	// Total counts all of alice's rows, not the windowed subset.
	require.EqualValues(t, 2, page.TotalCount)
	require.Len(t, page.Items, 1)
	require.Equal(t, "00000003", page.Items[0].ID)
}

func TestFetchPageEmptyStore(t *testing.T) {
	svc, _, _ := newService()

	page, err := svc.FetchPage(context.Background(), nil, 1, 20)
	require.NoError(t, err)
	require.NotNil(t, page.Items)
	require.Empty(t, page.Items)
	require.Zero(t, page.TotalCount)
}

func TestFetchPageClampsBadInputs(t *testing.T) {
	svc, store, _ := newService()
	store.photos = []Photo{{ID: "00000001", OwnerID: "alice", CreatedAt: time.Now()}}

	page, err := svc.FetchPage(context.Background(), nil, 0, -5)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
}
