package profile

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/photoshare/service/internal/apperr"
)

const maxDisplayNameLen = 50

// ProvisionOutcome tags how GetOrCreate resolved.
type ProvisionOutcome int

const (
	// OutcomeFound means the row already existed.
	OutcomeFound ProvisionOutcome = iota
	// OutcomeCreated means this call inserted the row.
	OutcomeCreated
	// OutcomeConflictRetried means a concurrent caller won the insert race
	// and this call returned the winner's row after a re-read.
	OutcomeConflictRetried
)

// Service contains the provisioning and update logic for profiles.
type Service struct {
	store Store
}

// NewService creates a new profile Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetOrCreate returns the profile for identity, inserting a default row on
// the first lookup miss. Two concurrent first lookups may both miss and both
// insert; the loser of that race re-reads and returns the winner's row, so
// the call is idempotent from the caller's perspective. Only a lookup miss
// triggers the insert; any other read failure propagates.
func (s *Service) GetOrCreate(ctx context.Context, identity string) (*Profile, ProvisionOutcome, error) {
	p, err := s.store.GetByOwner(ctx, identity)
	if err == nil {
		return p, OutcomeFound, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, 0, apperr.Wrap(apperr.KindProfileLookupFailed, "look up profile", err)
	}

	created, err := s.store.Insert(ctx, identity)
	if err == nil {
		return created, OutcomeCreated, nil
	}
	if !errors.Is(err, ErrAlreadyExists) {
		return nil, 0, apperr.Wrap(apperr.KindProfileCreateFailed, "create profile", err)
	}

	// Lost the insert race. The row now exists; return it.
	p, err = s.store.GetByOwner(ctx, identity)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindProfileLookupFailed, "re-read profile after create race", err)
	}
	return p, OutcomeConflictRetried, nil
}

// Update writes only the supplied fields on the caller's own profile. An
// empty field set is an idempotent read. Callers are expected to have
// provisioned first; a missing row is NoSuchProfile, not auto-created.
func (s *Service) Update(ctx context.Context, identity string, fields Fields) (*Profile, error) {
	if fields.DisplayName != nil && utf8.RuneCountInString(*fields.DisplayName) > maxDisplayNameLen {
		return nil, apperr.New(apperr.KindInvalidMetadata, "display name exceeds 50 characters")
	}

	p, err := s.store.Update(ctx, identity, fields)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindNoSuchProfile, "profile not provisioned", err)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProfileLookupFailed, "update profile", err)
	}
	return p, nil
}
