package service

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mifty-dev/seo-audit/audit"
	"github.com/mifty-dev/seo-audit/metrics"
	"github.com/mifty-dev/seo-audit/stats"
)

// Service wraps the pure audit engine with a TTL-bounded report cache
// and persistent counters. The engine itself stays stateless; repeated
// audits of identical page metadata are served from the cache.
type Service struct {
	engine       *audit.Engine
	cache        *expirable.LRU[string, *audit.AuditReport]
	stats        *stats.Storage
	batchWorkers int

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Options tunes the cache and batch behavior.
type Options struct {
	CacheSize    int
	CacheTTL     time.Duration
	BatchWorkers int
}

func DefaultOptions() Options {
	return Options{
		CacheSize:    1000,
		CacheTTL:     30 * time.Minute,
		BatchWorkers: 8,
	}
}

// New creates a Service around engine. Zero-valued options fall back
// to the defaults. storage may be nil when no persistence is wanted.
func New(engine *audit.Engine, storage *stats.Storage, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaults.CacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaults.CacheTTL
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = defaults.BatchWorkers
	}

	return &Service{
		engine:       engine,
		cache:        expirable.NewLRU[string, *audit.AuditReport](opts.CacheSize, nil, opts.CacheTTL),
		stats:        storage,
		batchWorkers: opts.BatchWorkers,
	}
}

// cacheKey derives a stable key from every page field that influences
// the report.
func cacheKey(page audit.PageMetadata) string {
	raw, err := json.Marshal(page)
	if err != nil {
		raw = []byte(page.Title + page.Description + page.Content)
	}
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// Audit returns the report for one page, serving repeats from cache.
func (s *Service) Audit(page audit.PageMetadata) *audit.AuditReport {
	key := cacheKey(page)
	if report, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		if s.stats != nil {
			s.stats.RecordCacheHit()
		}
		metrics.CacheHits.Inc()
		return report
	}

	s.misses.Add(1)
	if s.stats != nil {
		s.stats.RecordCacheMiss()
	}
	metrics.CacheMisses.Inc()

	start := time.Now()
	report := s.engine.AuditPage(page)
	metrics.AuditDuration.Observe(time.Since(start).Seconds())
	metrics.OverallScore.Observe(float64(report.OverallScore))

	valid := pageValid(&report)
	metrics.AuditsTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
	if s.stats != nil {
		s.stats.RecordAudit(report.OverallScore, !valid)
	}

	s.cache.Add(key, &report)
	return &report
}

// pageValid reports whether no validator recorded a hard error.
func pageValid(report *audit.AuditReport) bool {
	if !report.TitleValidation.IsValid || !report.DescriptionValidation.IsValid {
		return false
	}
	if report.StructuredDataValidation != nil && !report.StructuredDataValidation.IsValid {
		return false
	}
	return true
}

// IsCached reports whether an identical page already has a live,
// unexpired report.
func (s *Service) IsCached(page audit.PageMetadata) bool {
	_, ok := s.cache.Get(cacheKey(page))
	return ok
}

// CacheLen returns the number of live cache entries.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

// CacheStats is a point-in-time snapshot of the report cache.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// CacheStats snapshots the report cache for the statistics endpoint.
func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		Entries: s.cache.Len(),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
}

// ClearCache drops every cached report.
func (s *Service) ClearCache() {
	s.cache.Purge()
}

// Engine exposes the underlying engine for direct validator access.
func (s *Service) Engine() *audit.Engine {
	return s.engine
}
