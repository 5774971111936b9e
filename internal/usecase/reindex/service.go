// Package reindex rebuilds the whole index from the relational source of
// truth, page by page. It is an operator tool: incremental convergence is the
// sync engine's job.
package reindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/listdex/listdex/internal/domain/document"
	"github.com/listdex/listdex/internal/logger"
)

// DefaultPageSize is the number of listings rebuilt per bulk write.
const DefaultPageSize = 200

// Result summarizes a full rebuild.
type Result struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
	Pages   int `json:"pages"`
}

// Service pages the catalog through the document mapper into the index.
type Service struct {
	source   Source
	writer   IndexWriter
	pageSize int
}

// New creates a reindex service.
func New(source Source, writer IndexWriter) *Service {
	return &Service{source: source, writer: writer, pageSize: DefaultPageSize}
}

// WithPageSize configures listings per bulk write.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// Run rebuilds the index. It stops at the first backend or source failure;
// a partial rebuild is safe to re-run, upserts are idempotent.
func (s *Service) Run(ctx context.Context) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	if err := s.writer.EnsureIndex(ctx); err != nil {
		return res, fmt.Errorf("ensure index: %w", err)
	}

	var after uuid.UUID
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		page, err := s.source.FetchPage(ctx, after, s.pageSize)
		if err != nil {
			return res, fmt.Errorf("fetch page after %s: %w", after, err)
		}
		if len(page) == 0 {
			break
		}
		res.Pages++
		after = page[len(page)-1].ID

		ops := make([]document.Operation, 0, len(page))
		for i := range page {
			op, err := document.OperationFor(&page[i])
			if err != nil {
				res.Failed++
				log.Warn("listing rejected by document mapper",
					zap.String("listing_id", page[i].ID.String()),
					zap.Error(err))
				continue
			}
			ops = append(ops, op)
		}

		outcomes, err := s.writer.BulkApply(ctx, ops)
		if err != nil {
			return res, fmt.Errorf("bulk apply page %d: %w", res.Pages, err)
		}
		for _, out := range outcomes {
			if out.OK() {
				res.Indexed++
				continue
			}
			res.Failed++
			log.Warn("document rejected by index backend",
				zap.String("listing_id", out.ID()),
				zap.Error(out.Err()))
		}

		if len(page) < s.pageSize {
			break
		}
	}

	log.Info("reindex complete",
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
		zap.Int("pages", res.Pages))
	return res, nil
}
