package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pacs-study-browser/internal/domain/entity"
	"pacs-study-browser/internal/domain/repository"
	"pacs-study-browser/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"
)

var (
	ErrDirectoryLoadFailed = errors.New("failed to load application entity directory")
)

type DirectoryUsecase interface {
	// Listing returns the unpartitioned AE directory, from the shared cache when possible.
	Listing(ctx context.Context) (*entity.DirectoryListing, error)
	// Load returns the AE directory partitioned per access location for a user with roles.
	Load(ctx context.Context, roles []string) (entity.ApplicationEntities, error)
}

type directoryUsecase struct {
	log        *logrus.Logger
	archive    repository.ArchiveRepository
	cache      repository.DirectoryCache
	cacheTTL   time.Duration
	permission service.PermissionService
	metrics    *service.SearchMetrics

	group singleflight.Group
}

// NewDirectoryUsecase creates the directory loader. cache and metrics may be nil.
func NewDirectoryUsecase(
	log *logrus.Logger,
	archive repository.ArchiveRepository,
	cache repository.DirectoryCache,
	cacheTTL time.Duration,
	permission service.PermissionService,
	metrics *service.SearchMetrics,
) DirectoryUsecase {
	return &directoryUsecase{
		log:        log,
		archive:    archive,
		cache:      cache,
		cacheTTL:   cacheTTL,
		permission: permission,
		metrics:    metrics,
	}
}

func (u *directoryUsecase) Listing(ctx context.Context) (*entity.DirectoryListing, error) {
	if u.cache != nil {
		listing, err := u.cache.Get(ctx)
		if err != nil {
			u.log.Warnf("Failed to read cached directory: %+v", err)
		} else if listing != nil {
			u.observe("cache", nil)
			return listing, nil
		}
	}

	// Concurrent first loads share one archive round trip. The fetch must outlive a
	// single caller giving up.
	v, err, _ := u.group.Do("directory", func() (interface{}, error) {
		return u.fetch(context.WithoutCancel(ctx))
	})
	u.observe("archive", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryLoadFailed, err)
	}
	listing := v.(*entity.DirectoryListing)

	if u.cache != nil {
		if err := u.cache.Set(ctx, listing, u.cacheTTL); err != nil {
			u.log.Warnf("Failed to cache directory: %+v", err)
		}
	}
	return listing, nil
}

func (u *directoryUsecase) Load(ctx context.Context, roles []string) (entity.ApplicationEntities, error) {
	listing, err := u.Listing(ctx)
	if err != nil {
		return entity.NewApplicationEntities(), err
	}
	return u.partition(listing, roles), nil
}

// fetch gets AEs and AETs concurrently; the first error cancels the other call.
func (u *directoryUsecase) fetch(ctx context.Context) (*entity.DirectoryListing, error) {
	listing := &entity.DirectoryListing{}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		aes, err := u.archive.GetAes(ctx)
		if err != nil {
			return fmt.Errorf("get aes: %w", err)
		}
		listing.Aes = aes
		return nil
	})
	p.Go(func(ctx context.Context) error {
		aets, err := u.archive.GetAets(ctx)
		if err != nil {
			return fmt.Errorf("get aets: %w", err)
		}
		listing.Aets = aets
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	u.log.Infof("Loaded application entity directory: aes=%d, aets=%d", len(listing.Aes), len(listing.Aets))
	return listing, nil
}

func (u *directoryUsecase) partition(listing *entity.DirectoryListing, roles []string) entity.ApplicationEntities {
	entities := entity.NewApplicationEntities()
	aes := entity.ExtendAetsWithAlias(listing.Aes)
	aets := entity.ExtendAetsWithAlias(listing.Aets)

	for _, location := range entity.AccessLocations {
		entities.Aes[location] = u.permission.FilterAetDependingOnUiConfig(aes, location, roles)
		entities.Aets[location] = u.permission.FilterAetDependingOnUiConfig(aets, location, roles)
	}
	entities.AetsAreSet = true
	return entities
}

func (u *directoryUsecase) observe(source string, err error) {
	if u.metrics != nil {
		u.metrics.DirectoryLoaded(source, err)
	}
}
