package repository

import (
	"context"
	"time"

	"pacs-study-browser/internal/domain/entity"
)

// DirectoryCache keeps the fetched AE directory shared between sessions.
// Get returns nil without error on a miss.
type DirectoryCache interface {
	Get(ctx context.Context) (*entity.DirectoryListing, error)
	Set(ctx context.Context, listing *entity.DirectoryListing, ttl time.Duration) error
}
