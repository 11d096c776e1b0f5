package service

import (
	"github.com/okian/housecup/internal/adapters/mq/worker"
	"github.com/okian/housecup/internal/adapters/repository"
	"github.com/okian/housecup/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the change queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of idempotency keys remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxRankingLimit caps the number of standings a ranking query returns.
func WithMaxRankingLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxRankingLimit = limit
		}
	}
}

// WithStrictPlacements rejects commits whose placements are missing from the
// event's scoring schedule.
func WithStrictPlacements(strict bool) Option {
	return func(s *Service) {
		s.strictPlacements = strict
	}
}

// WithStore uses store instead of a fresh in-memory store. The caller keeps
// ownership and closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNotifier publishes every new scoreboard through n.
func WithNotifier(n worker.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
