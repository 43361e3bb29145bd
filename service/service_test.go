package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mifty-dev/seo-audit/audit"
	"github.com/mifty-dev/seo-audit/stats"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Shutdown() })

	return New(audit.New(audit.DefaultConfig()), storage, DefaultOptions())
}

func testPage(title string) audit.PageMetadata {
	return audit.PageMetadata{
		Title:       title,
		Description: "A page used in service tests.",
		Content:     `<a href="/docs">Mifty Documentation Index</a>`,
		Keywords:    []string{"mifty"},
	}
}

func TestAuditCaching(t *testing.T) {
	svc := newTestService(t)
	page := testPage("Mifty Framework Visual Database Designer Guide")

	assert.False(t, svc.IsCached(page))

	first := svc.Audit(page)
	assert.True(t, svc.IsCached(page))
	assert.Equal(t, 1, svc.CacheLen())

	second := svc.Audit(page)
	assert.Same(t, first, second, "repeat audits should be served from cache")

	svc.ClearCache()
	assert.False(t, svc.IsCached(page))
	assert.Equal(t, 0, svc.CacheLen())
}

func TestAuditDistinguishesPages(t *testing.T) {
	svc := newTestService(t)

	a := testPage("Mifty Framework Visual Database Designer Guide")
	b := testPage("Mifty Framework Visual Database Designer Guide")
	b.Description = "A different description changes the cache key."

	svc.Audit(a)
	assert.False(t, svc.IsCached(b))

	svc.Audit(b)
	assert.Equal(t, 2, svc.CacheLen())
}

func TestAuditRecordsStats(t *testing.T) {
	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	defer storage.Shutdown()

	svc := New(audit.New(audit.DefaultConfig()), storage, DefaultOptions())
	page := testPage("Mifty Framework Visual Database Designer Guide")

	svc.Audit(page)
	svc.Audit(page)

	monthly := storage.GetCurrentStats()
	assert.Equal(t, 1, monthly.Audits)
	assert.Equal(t, 1, monthly.CacheHits)
	assert.Equal(t, 1, monthly.CacheMisses)
}

func TestCacheStatsSnapshot(t *testing.T) {
	svc := New(audit.New(audit.DefaultConfig()), nil, DefaultOptions())
	page := testPage("Mifty Framework Visual Database Designer Guide")

	svc.Audit(page)
	svc.Audit(page)
	svc.Audit(testPage("Mifty Framework Query Builder Reference Guide"))

	snapshot := svc.CacheStats()
	assert.Equal(t, 2, snapshot.Entries)
	assert.Equal(t, uint64(1), snapshot.Hits)
	assert.Equal(t, uint64(2), snapshot.Misses)
}

func TestAuditInvalidPageCounted(t *testing.T) {
	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	defer storage.Shutdown()

	svc := New(audit.New(audit.DefaultConfig()), storage, DefaultOptions())

	svc.Audit(audit.PageMetadata{Title: "Hi"})

	monthly := storage.GetCurrentStats()
	assert.Equal(t, 1, monthly.InvalidPages)
}

func TestNilStorageIsAllowed(t *testing.T) {
	svc := New(audit.New(audit.DefaultConfig()), nil, DefaultOptions())

	report := svc.Audit(testPage("Mifty Framework Visual Database Designer Guide"))
	assert.NotNil(t, report)
}

func TestAuditBatchPreservesOrder(t *testing.T) {
	svc := newTestService(t)

	pages := make([]audit.PageMetadata, 20)
	for i := range pages {
		pages[i] = audit.PageMetadata{
			Title:    fmt.Sprintf("Page %d", i),
			Keywords: []string{fmt.Sprintf("keyword%d", i)},
		}
	}

	reports, err := svc.AuditBatch(context.Background(), pages)
	require.NoError(t, err)
	require.Len(t, reports, 20)

	for i, report := range reports {
		require.NotNil(t, report)
		require.Len(t, report.KeywordDensity, 1)
		assert.Equal(t, fmt.Sprintf("keyword%d", i), report.KeywordDensity[0].Keyword)
	}
}

func TestAuditBatchEmpty(t *testing.T) {
	svc := newTestService(t)

	reports, err := svc.AuditBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestAuditBatchCancelledContext(t *testing.T) {
	svc := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := make([]audit.PageMetadata, 50)
	for i := range pages {
		pages[i] = audit.PageMetadata{Title: fmt.Sprintf("Page %d", i)}
	}

	reports, err := svc.AuditBatch(ctx, pages)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, reports, 50)
	for _, report := range reports {
		assert.Nil(t, report)
	}
}

func TestAuditBatchKeepsCompletedReports(t *testing.T) {
	svc := New(audit.New(audit.DefaultConfig()), nil, Options{BatchWorkers: 1})

	// Heavy markup keeps each audit busy long enough for the
	// cancellation below to land mid-batch.
	content := strings.Repeat(`<a href="/docs">Documentation</a> `, 2000)
	pages := make([]audit.PageMetadata, 50)
	for i := range pages {
		pages[i] = audit.PageMetadata{
			Title:   fmt.Sprintf("Page %d", i),
			Content: content,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for !svc.IsCached(pages[0]) {
			time.Sleep(200 * time.Microsecond)
		}
		cancel()
	}()

	reports, err := svc.AuditBatch(ctx, pages)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, reports, 50)

	// The page finished before cancellation still comes back.
	assert.NotNil(t, reports[0])

	skipped := 0
	for _, report := range reports {
		if report == nil {
			skipped++
		}
	}
	assert.Greater(t, skipped, 0)
}

func TestCacheExpiry(t *testing.T) {
	svc := New(audit.New(audit.DefaultConfig()), nil, Options{
		CacheSize: 10,
		CacheTTL:  50 * time.Millisecond,
	})
	page := testPage("Mifty Framework Visual Database Designer Guide")

	svc.Audit(page)
	require.True(t, svc.IsCached(page))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, svc.IsCached(page))
}
