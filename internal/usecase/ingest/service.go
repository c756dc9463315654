// Package ingest turns external articles into embedded documents.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/querymorph/querymorph/internal/domain"
	"github.com/querymorph/querymorph/internal/metrics"
)

// Report summarizes one sweep over the configured sources.
type Report struct {
	Sources  int
	Articles int
	Stored   int
	Failed   int
}

// Service embeds and stores articles pulled from feed sources.
type Service struct {
	fetch   Fetcher
	embed   Embedder
	docs    DocumentWriter
	logger  *zap.Logger
	timeout time.Duration
}

// New creates an ingest service. timeout bounds each embedding call;
// zero disables the deadline.
func New(fetch Fetcher, embed Embedder, docs DocumentWriter, logger *zap.Logger, timeout time.Duration) *Service {
	return &Service{
		fetch:   fetch,
		embed:   embed,
		docs:    docs,
		logger:  logger,
		timeout: timeout,
	}
}

// IngestArticle validates, embeds, and stores a single article.
func (s *Service) IngestArticle(ctx context.Context, a domain.Article) (domain.Document, error) {
	doc, err := domain.NewDocument(a.Title, a.Content, a.URL)
	if err != nil {
		metrics.IngestedDocumentsTotal.WithLabelValues("rejected").Inc()
		return domain.Document{}, err
	}

	embedCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.embed.Embed(embedCtx, a.Content)
	if err != nil {
		metrics.IngestedDocumentsTotal.WithLabelValues("failed").Inc()
		return domain.Document{}, fmt.Errorf("embed article: %w", err)
	}
	doc = doc.WithVector(res.Embedding)

	stored, err := s.docs.Insert(ctx, doc)
	if err != nil {
		metrics.IngestedDocumentsTotal.WithLabelValues("failed").Inc()
		return domain.Document{}, fmt.Errorf("store article: %w", err)
	}

	metrics.IngestedDocumentsTotal.WithLabelValues("stored").Inc()
	return stored, nil
}

// Sweep pulls every source once. A failed source or article is logged
// and skipped; the sweep always finishes.
func (s *Service) Sweep(ctx context.Context, sources []string) Report {
	report := Report{Sources: len(sources)}

	for _, src := range sources {
		articles, err := s.fetch.Fetch(ctx, src)
		if err != nil {
			s.logger.Warn("feed fetch failed", zap.String("source", src), zap.Error(err))
			continue
		}
		report.Articles += len(articles)

		for _, a := range articles {
			if _, err := s.IngestArticle(ctx, a); err != nil {
				report.Failed++
				s.logger.Warn("article ingest failed",
					zap.String("source", src),
					zap.String("title", a.Title),
					zap.Error(err),
				)
				continue
			}
			report.Stored++
		}
	}

	s.logger.Info("ingest sweep finished",
		zap.Int("sources", report.Sources),
		zap.Int("articles", report.Articles),
		zap.Int("stored", report.Stored),
		zap.Int("failed", report.Failed),
	)

	return report
}
