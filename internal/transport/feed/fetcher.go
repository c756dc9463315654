// Package feed fetches articles from external JSON sources.
//
// A source is any HTTP endpoint that returns a JSON array of
// {title, url, content} objects. The fetcher does no parsing beyond
// that contract; producers are expected to do their own extraction.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/querymorph/querymorph/internal/domain"
)

// maxFeedBytes bounds the response body read from a single source.
const maxFeedBytes = 8 << 20

type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type articleDTO struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Fetch retrieves the article list published at url. Any transport or
// decode failure is reported as an upstream error; the caller decides
// whether to skip the source or fail the sweep.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", domain.ErrUpstream, url, resp.StatusCode)
	}

	var dtos []articleDTO
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes))
	if err := dec.Decode(&dtos); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrUpstream, url, err)
	}

	articles := make([]domain.Article, 0, len(dtos))
	for _, d := range dtos {
		articles = append(articles, domain.Article{
			Title:   d.Title,
			URL:     d.URL,
			Content: d.Content,
		})
	}

	f.logger.Debug("fetched feed",
		zap.String("url", url),
		zap.Int("articles", len(articles)),
	)

	return articles, nil
}
