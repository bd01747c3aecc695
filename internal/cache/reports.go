package cache

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
)

// ReportCache stores reports as JSON in a Cache.
// A nil *ReportCache is valid and never hits.
type ReportCache struct {
	store Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewReportCache wraps store; it returns nil when store is nil
func NewReportCache(store Cache, ttl time.Duration, log *zap.Logger) *ReportCache {
	if store == nil {
		return nil
	}
	return &ReportCache{store: store, ttl: ttl, log: logging.OrNop(log)}
}

// Get returns the cached report for key
func (c *ReportCache) Get(key string) (*model.Report, bool) {
	if c == nil {
		return nil, false
	}

	data, found := c.store.Get(key)
	if !found {
		return nil, false
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		c.log.Warn("dropping unreadable cached report", zap.String("key", key), zap.Error(err))
		_ = c.store.Delete(key)
		return nil, false
	}

	c.log.Debug("report cache hit", zap.String("key", key))
	return &report, true
}

// Put stores a report; failures are logged, never returned
func (c *ReportCache) Put(key string, report *model.Report) {
	if c == nil || report == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		c.log.Warn("could not encode report for cache", zap.Error(err))
		return
	}
	if err := c.store.Set(key, data, c.ttl); err != nil {
		c.log.Warn("could not store report in cache", zap.String("key", key), zap.Error(err))
	}
}
