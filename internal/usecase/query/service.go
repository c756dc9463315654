// Package query orchestrates the retrieval-augmented answer pipeline:
// quota admission, result cache lookup, query expansion, embedding,
// full-scan ranking, and answer synthesis.
package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/querymorph/querymorph/internal/domain"
	"github.com/querymorph/querymorph/internal/domain/rank"
	"github.com/querymorph/querymorph/internal/metrics"
	"github.com/querymorph/querymorph/internal/repository/resultcache"
)

// Config carries search defaults and the upstream call deadline.
type Config struct {
	DefaultTopK      int
	DefaultThreshold float64
	UpstreamTimeout  time.Duration
}

// Request is a single user search. TopK and Threshold override the
// configured defaults only when set; a nil pointer means "use default",
// which is distinct from an explicit zero.
type Request struct {
	UserID    string
	Query     string
	TopK      *int
	Threshold *float64
}

// Result is one ranked document returned to the caller.
type Result struct {
	ID        string
	Title     string
	Content   string
	SourceURL string
	Score     float64
}

// Response is the outcome of a completed search.
type Response struct {
	Answer  string
	Results []Result
	Cached  bool
}

// Service runs the query pipeline.
type Service struct {
	quota  Quota
	cache  Cache
	docs   DocumentReader
	embed  Embedder
	llm    Completer
	logger *zap.Logger
	cfg    Config
}

// New creates a query service.
func New(quota Quota, cache Cache, docs DocumentReader, embed Embedder, llm Completer, logger *zap.Logger, cfg Config) *Service {
	return &Service{
		quota:  quota,
		cache:  cache,
		docs:   docs,
		embed:  embed,
		llm:    llm,
		logger: logger,
		cfg:    cfg,
	}
}

// Answer executes the full pipeline for one request.
//
// Order matters: admission happens before the cache lookup, so a cached
// answer still consumes quota; a rejected request touches nothing else.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	if req.UserID == "" || req.Query == "" {
		metrics.PipelineRequestsTotal.WithLabelValues("invalid_input").Inc()
		return Response{}, fmt.Errorf("%w: user_id and query are required", domain.ErrInvalidInput)
	}

	ok, err := s.quota.Admit(ctx, req.UserID)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("storage_failure").Inc()
		return Response{}, fmt.Errorf("admit: %w", err)
	}
	if !ok {
		metrics.PipelineRequestsTotal.WithLabelValues("quota_exceeded").Inc()
		return Response{}, domain.ErrQuotaExceeded
	}

	// A missing entry is a plain miss; a failing cache store is fatal
	// for the request and must stay distinguishable from quota rejection.
	cached, hit, err := s.cache.Get(ctx, req.UserID, req.Query)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("storage_failure").Inc()
		return Response{}, fmt.Errorf("cache lookup: %w", err)
	}
	if hit {
		metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
		metrics.PipelineRequestsTotal.WithLabelValues("cache_hit").Inc()
		return responseFromPayload(cached, true), nil
	}
	metrics.ResultCacheTotal.WithLabelValues("miss").Inc()

	expanded, err := s.expand(ctx, req.Query)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("upstream_failure").Inc()
		return Response{}, fmt.Errorf("expand query: %w", err)
	}

	queryVec, err := s.embedText(ctx, expanded)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("upstream_failure").Inc()
		return Response{}, fmt.Errorf("embed query: %w", err)
	}

	docs, err := s.docs.All(ctx)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("storage_failure").Inc()
		return Response{}, fmt.Errorf("load documents: %w", err)
	}

	topK := s.cfg.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	threshold := s.cfg.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	rankStart := time.Now()
	matches := rank.Rank(queryVec, docs, topK, threshold)
	metrics.RankDuration.Observe(time.Since(rankStart).Seconds())
	metrics.RankDocumentsScanned.Observe(float64(len(docs)))

	contexts := make([]string, 0, len(matches))
	for i := range matches {
		contexts = append(contexts, matches[i].Document.Content())
	}

	answer, err := s.synthesize(ctx, req.Query, contexts)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("upstream_failure").Inc()
		return Response{}, fmt.Errorf("synthesize answer: %w", err)
	}

	payload := payloadFromMatches(matches, answer)
	if err := s.cache.Put(ctx, req.UserID, req.Query, payload); err != nil {
		// The answer is already computed; losing the cache entry is not fatal.
		s.logger.Warn("result cache write failed", zap.String("user_id", req.UserID), zap.Error(err))
	}

	metrics.PipelineRequestsTotal.WithLabelValues("completed").Inc()
	s.logger.Info("query completed",
		zap.String("user_id", req.UserID),
		zap.Int("documents_scanned", len(docs)),
		zap.Int("matches", len(matches)),
	)

	return responseFromPayload(payload, false), nil
}

func (s *Service) expand(ctx context.Context, query string) (string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.llm.ExpandQuery(ctx, query)
}

func (s *Service) embedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return res.Embedding, nil
}

func (s *Service) synthesize(ctx context.Context, query string, contexts []string) (string, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.llm.SynthesizeAnswer(ctx, query, contexts)
}

func (s *Service) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.UpstreamTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
}

func payloadFromMatches(matches []rank.Match, answer string) resultcache.Payload {
	p := resultcache.Payload{Answer: answer, Results: make([]resultcache.Result, 0, len(matches))}
	for i := range matches {
		doc := &matches[i].Document
		p.Results = append(p.Results, resultcache.Result{
			ID:        doc.ID(),
			Title:     doc.Title(),
			Content:   doc.Content(),
			SourceURL: doc.SourceURL(),
			Score:     matches[i].Score,
		})
	}
	return p
}

func responseFromPayload(p resultcache.Payload, cached bool) Response {
	resp := Response{Answer: p.Answer, Cached: cached, Results: make([]Result, 0, len(p.Results))}
	for _, r := range p.Results {
		resp.Results = append(resp.Results, Result{
			ID:        r.ID,
			Title:     r.Title,
			Content:   r.Content,
			SourceURL: r.SourceURL,
			Score:     r.Score,
		})
	}
	return resp
}
