package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mifty-dev/seo-audit/audit"
)

// AuditBatch audits many pages concurrently. Each page is independent,
// so the fan-out needs no coordination beyond a worker cap; reports
// come back in input order. Cancelling the context stops scheduling
// further pages but keeps whatever was already produced: the returned
// slice always has one slot per input page, with nil entries for the
// pages that never ran, alongside the context error.
func (s *Service) AuditBatch(ctx context.Context, pages []audit.PageMetadata) ([]*audit.AuditReport, error) {
	reports := make([]*audit.AuditReport, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchWorkers)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			reports[i] = s.Audit(page)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
