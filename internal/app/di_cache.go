package app

import (
	cacheRepository "github.com/allisson/entitygate/internal/cache/repository"
	cacheService "github.com/allisson/entitygate/internal/cache/service"
	cacheUseCase "github.com/allisson/entitygate/internal/cache/usecase"
	"github.com/allisson/entitygate/internal/metrics"
)

// Fetcher returns the downstream entity fetcher.
func (c *Container) Fetcher() *cacheRepository.HTTPFetcher {
	c.fetcherInit.Do(func() {
		c.fetcher = cacheRepository.NewHTTPFetcher(
			c.config.DownstreamBaseURL,
			c.config.DownstreamTimeout,
			c.config.DownstreamMaxRetries,
			c.Logger(),
		)
	})
	return c.fetcher
}

// SnapshotStore returns the published-snapshot store.
func (c *Container) SnapshotStore() *cacheService.Store {
	c.snapshotStoreInit.Do(func() {
		c.snapshotStore = cacheService.NewStore(c.Logger())
	})
	return c.snapshotStore
}

// Refresher returns the background cache refresher.
func (c *Container) Refresher() (*cacheService.Refresher, error) {
	var err error
	c.refresherInit.Do(func() {
		var business metrics.BusinessMetrics
		business, err = c.BusinessMetrics()
		if err != nil {
			c.initErrors["refresher"] = err
			return
		}
		c.refresher = cacheService.NewRefresher(
			c.Fetcher(),
			c.SnapshotStore(),
			c.config,
			c.Logger(),
			business,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["refresher"]; exists {
		return nil, storedErr
	}
	return c.refresher, nil
}

// CacheUseCase returns the cache use case.
func (c *Container) CacheUseCase() (cacheUseCase.UseCase, error) {
	var err error
	c.cacheUseCaseInit.Do(func() {
		var refresher *cacheService.Refresher
		refresher, err = c.Refresher()
		if err != nil {
			c.initErrors["cacheUseCase"] = err
			return
		}
		c.cacheUseCase = cacheUseCase.NewCacheUseCase(c.SnapshotStore(), refresher)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cacheUseCase"]; exists {
		return nil, storedErr
	}
	return c.cacheUseCase, nil
}
