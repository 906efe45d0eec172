// Package profile manages per-identity profile rows: lazy provisioning on
// first lookup and owner-scoped partial updates.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the identity-scoped record attached to every photo owner.
type Profile struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	DisplayName *string   `json:"displayName,omitempty"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Fields holds the optional attributes an owner may update. Nil pointers
// mean "leave unchanged".
type Fields struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// Empty reports whether no field is supplied.
func (f Fields) Empty() bool {
	return f.DisplayName == nil && f.AvatarURL == nil
}

// ErrNotFound is returned when no profile row exists for an owner.
var ErrNotFound = errors.New("profile not found")

// ErrAlreadyExists is returned when an insert hits the uniqueness constraint
// on owner_id.
var ErrAlreadyExists = errors.New("profile already exists")

// Store is the narrow persistence surface the provisioner needs. It is
// interface-driven so the get-or-create race handling can be exercised
// without Postgres.
type Store interface {
	GetByOwner(ctx context.Context, ownerID string) (*Profile, error)
	Insert(ctx context.Context, ownerID string) (*Profile, error)
	Update(ctx context.Context, ownerID string, fields Fields) (*Profile, error)
}

// Repository implements Store on a pgx connection pool.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByOwner fetches the profile row keyed by owner identity.
func (r *Repository) GetByOwner(ctx context.Context, ownerID string) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, display_name, avatar_url, created_at
		 FROM profiles WHERE owner_id = $1`,
		ownerID,
	).Scan(&p.ID, &p.OwnerID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by owner: %w", err)
	}
	return p, nil
}

// Insert creates a default-valued profile row for the owner and returns it.
func (r *Repository) Insert(ctx context.Context, ownerID string) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO profiles (owner_id)
		 VALUES ($1)
		 RETURNING id, owner_id, display_name, avatar_url, created_at`,
		ownerID,
	).Scan(&p.ID, &p.OwnerID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

// Update writes only the supplied fields, scoped by owner identity. An empty
// field set performs no write and returns the current row.
func (r *Repository) Update(ctx context.Context, ownerID string, fields Fields) (*Profile, error) {
	if fields.Empty() {
		return r.GetByOwner(ctx, ownerID)
	}

	set := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if fields.DisplayName != nil {
		args = append(args, *fields.DisplayName)
		set = append(set, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if fields.AvatarURL != nil {
		args = append(args, *fields.AvatarURL)
		set = append(set, fmt.Sprintf("avatar_url = $%d", len(args)))
	}
	args = append(args, ownerID)

	p := &Profile{}
	query := fmt.Sprintf(
		`UPDATE profiles SET %s WHERE owner_id = $%d
		 RETURNING id, owner_id, display_name, avatar_url, created_at`,
		strings.Join(set, ", "), len(args),
	)
	err := r.db.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.OwnerID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation
// (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
