package scheduler

import (
	"context"
	"fmt"
	"time"

	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
)

const cleanupTimeout = 2 * time.Minute

// CacheCleanupJob purges expired cache entries from backends that keep them
// around until read.
type CacheCleanupJob struct {
	cleaner interfaces.Cleaner
	timeout time.Duration
}

func NewCacheCleanupJob(cleaner interfaces.Cleaner) *CacheCleanupJob {
	return &CacheCleanupJob{
		cleaner: cleaner,
		timeout: cleanupTimeout,
	}
}

func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

func (j *CacheCleanupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.cleaner.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("delete expired cache entries: %w", err)
	}

	if n > 0 {
		logger.Info(ctx, "Expired cache entries removed", "count", n)
	}
	return nil
}
