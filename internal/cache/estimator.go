package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/luxfi/lwe"
)

// Estimator serves estimates from a Cache and falls through to the wrapped
// estimator on a miss. Cache errors are logged, never returned.
type Estimator struct {
	next  lwe.Estimator
	cache Cache
}

var _ lwe.Estimator = (*Estimator)(nil)

// NewEstimator wraps next with cache.
func NewEstimator(next lwe.Estimator, cache Cache) *Estimator {
	return &Estimator{next: next, cache: cache}
}

func (e *Estimator) Estimate(ctx context.Context, params lwe.Parameters, mode lwe.Mode) (*lwe.Estimate, error) {
	key, err := KeyFor(params, mode)
	if err != nil {
		return nil, err
	}

	data, err := e.cache.Load(ctx, key)
	switch {
	case err == nil:
		var est lwe.Estimate
		if err := json.Unmarshal(data, &est); err == nil {
			log.Debugf("cache hit %s for %s", key[:12], params)
			return &est, nil
		}
		log.Warningf("discarding corrupt cache entry %s", key)
	case errors.Is(err, ErrNotFound):
		log.Debugf("cache miss %s", key[:12])
	default:
		log.Warningf("cache load: %v", err)
	}

	est, err := e.next.Estimate(ctx, params, mode)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(est); err != nil {
		log.Warningf("marshal estimate: %v", err)
	} else if err := e.cache.Store(ctx, key, data); err != nil {
		log.Warningf("cache store: %v", err)
	}
	return est, nil
}
