package photo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/photoshare/service/internal/profile"
)

// Photo is a committed media item: a blob in object storage plus the
// metadata row that references it.
type Photo struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	ImageURL    string    `json:"imageUrl"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	// Profile is the owner's profile attached read-only at query time.
	// A photo whose profile join misses is still valid; Profile is nil.
	Profile *profile.Profile `json:"profile,omitempty"`
}

// Store is the metadata persistence surface for photos. Interface-driven so
// the commit and pagination logic can be exercised without Postgres.
type Store interface {
	Insert(ctx context.Context, ownerID, imageURL, title string, description *string) (*Photo, error)
	// ListPage returns the window [offset, offset+limit) of photos ordered
	// by created_at descending with id descending as tie-break, optionally
	// filtered by owner, plus the exact total count under the same filter.
	ListPage(ctx context.Context, ownerID *string, offset, limit int) ([]Photo, int64, error)
}

// Repository implements Store on a pgx connection pool.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert persists a photo row and returns it with the store-assigned id and
// timestamp.
func (r *Repository) Insert(ctx context.Context, ownerID, imageURL, title string, description *string) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO photos (owner_id, image_url, title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, owner_id, image_url, title, description, created_at`,
		ownerID, imageURL, title, description,
	).Scan(&p.ID, &p.OwnerID, &p.ImageURL, &p.Title, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}
	return p, nil
}

// ListPage reads one feed window plus the matching total. The count query
// uses the same filter predicate as the window query, never the windowed
// subset.
func (r *Repository) ListPage(ctx context.Context, ownerID *string, offset, limit int) ([]Photo, int64, error) {
	var (
		total     int64
		countSQL  = `SELECT COUNT(*) FROM photos`
		windowSQL = `SELECT p.id, p.owner_id, p.image_url, p.title, p.description, p.created_at,
		                    pr.id, pr.display_name, pr.avatar_url, pr.created_at
		             FROM photos p
		             LEFT JOIN profiles pr ON pr.owner_id = p.owner_id`
		countArgs  []any
		windowArgs []any
	)
	if ownerID != nil {
		countSQL += ` WHERE owner_id = $1`
		countArgs = append(countArgs, *ownerID)
		windowSQL += ` WHERE p.owner_id = $1`
		windowArgs = append(windowArgs, *ownerID)
	}
	windowSQL += fmt.Sprintf(
		` ORDER BY p.created_at DESC, p.id DESC OFFSET $%d LIMIT $%d`,
		len(windowArgs)+1, len(windowArgs)+2,
	)
	windowArgs = append(windowArgs, offset, limit)

	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count photos: %w", err)
	}

	rows, err := r.db.Query(ctx, windowSQL, windowArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		var (
			p           Photo
			title       *string
			prID        *string
			prName      *string
			prAvatar    *string
			prCreatedAt *time.Time
		)
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.ImageURL, &title, &p.Description, &p.CreatedAt,
			&prID, &prName, &prAvatar, &prCreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan photo row: %w", err)
		}
		if title != nil {
			p.Title = *title
		}
		if prID != nil {
			p.Profile = &profile.Profile{
				ID:          *prID,
				OwnerID:     p.OwnerID,
				DisplayName: prName,
				AvatarURL:   prAvatar,
				CreatedAt:   *prCreatedAt,
			}
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate photo rows: %w", err)
	}
	return photos, total, nil
}
