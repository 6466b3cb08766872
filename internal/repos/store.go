package repos

import (
	"context"

	"github.com/google/uuid"
)

// Store holds the catalog. Records keep insertion order.
// Implementations must be safe for concurrent use.
type Store interface {
	List(ctx context.Context) ([]Repo, error)
	// Create appends repo, assigning an id when repo.ID is nil and resetting likes.
	Create(ctx context.Context, repo Repo) (Repo, error)
	Get(ctx context.Context, id uuid.UUID) (Repo, error)
	// Update replaces title, url and techs of the record with repo.ID.
	// The stored id and likes are kept.
	Update(ctx context.Context, repo Repo) (Repo, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Like increments likes by one and returns the new count.
	Like(ctx context.Context, id uuid.UUID) (int64, error)
	Len() int
}
