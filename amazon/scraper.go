// Package amazon scrapes product detail pages from the Amazon marketplace,
// composing challenge-aware retrieval, declarative extraction, value
// transformation, and schema validation into a single operation.
package amazon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/afilimax/go-scrape-amazon/config"
	"github.com/afilimax/go-scrape-amazon/extract"
	"github.com/afilimax/go-scrape-amazon/fetch"
	"github.com/afilimax/go-scrape-amazon/models"
	"github.com/afilimax/go-scrape-amazon/schema"
	"github.com/afilimax/go-scrape-amazon/transform"
)

// Scraper retrieves product pages and produces validated product records.
// Pages are fetched with the fast strategy first; when the response is an
// anti-bot interstitial the scraper falls back to the browser strategy for
// the same canonical URL. Concurrent scrapes share only the browser
// resource, which serializes its sessions internally.
type Scraper struct {
	cfg     *config.Config
	fast    fetch.Fetcher
	browser fetch.Fetcher
	logger  *slog.Logger
	cache   *lru.Cache[string, *models.ScrapedProduct]
	Metrics *Metrics
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithFastFetcher replaces the default fast retrieval backend.
func WithFastFetcher(f fetch.Fetcher) Option {
	return func(s *Scraper) { s.fast = f }
}

// WithBrowserFetcher replaces the default browser retrieval backend.
func WithBrowserFetcher(f fetch.Fetcher) Option {
	return func(s *Scraper) { s.browser = f }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) { s.logger = logger }
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config, opts ...Option) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Scraper{
		cfg:     cfg,
		logger:  slog.New(slog.DiscardHandler),
		Metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fast == nil {
		s.fast = fetch.NewFastClient(cfg)
	}
	if s.browser == nil {
		s.browser = fetch.NewBrowserClient(cfg)
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, *models.ScrapedProduct](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create product cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// ScrapeProduct fetches the product page behind rawURL and returns its
// validated product record. No partial product is ever returned: extraction
// absence resolves to defaults, but transformation and validation failures
// abort the attempt.
func (s *Scraper) ScrapeProduct(ctx context.Context, rawURL string) (*models.ScrapedProduct, error) {
	url := CanonicalURL(rawURL)
	s.logger.Debug("scraping product", slog.String("url", url))

	if s.cache != nil {
		if product, ok := s.cache.Get(url); ok {
			s.Metrics.IncCacheHit()
			return product, nil
		}
	}

	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		s.Metrics.IncScrape("retrieval_error")
		s.Metrics.IncError(fetch.ErrorLabel(err))
		return nil, err
	}

	product, err := s.ExtractAndTransform(doc, url)
	if err != nil {
		s.Metrics.IncScrape(outcomeLabel(err))
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(url, product)
	}
	s.Metrics.IncScrape("success")
	return product, nil
}

// fetchDocument retrieves url with the fast strategy, detects the challenge
// marker, and escalates to the browser strategy at most once. The caller
// cannot tell which strategy served the page except via logs.
func (s *Scraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	start := time.Now()
	res, err := s.fast.Fetch(ctx, url)
	s.Metrics.ObserveFetch("fast", time.Since(start))
	if err != nil {
		return nil, err
	}

	doc, err := parseDocument(res.Body)
	if err != nil {
		return nil, err
	}

	if !hasChallenge(doc) {
		if res.StatusCode >= 400 {
			return nil, fetch.RetrievalError{
				URL:        url,
				StatusCode: res.StatusCode,
				Err:        fetch.Classify(nil, res.StatusCode),
			}
		}
		return doc, nil
	}

	s.Metrics.IncFallback()
	s.logger.Debug("challenge wall detected, using browser strategy", slog.String("url", url))

	start = time.Now()
	res, err = s.browser.Fetch(ctx, url)
	s.Metrics.ObserveFetch("browser", time.Since(start))
	if err != nil {
		return nil, err
	}
	return parseDocument(res.Body)
}

// ExtractAndTransform runs the extraction and transformation half of the
// pipeline against an already parsed document, bypassing retrieval, so
// captured markup can be processed without network access.
func (s *Scraper) ExtractAndTransform(doc *goquery.Document, url string) (*models.ScrapedProduct, error) {
	s.logger.Debug("extracting product data", slog.String("url", url))
	raw := extract.Extract(doc.Selection, ProductExtractionModel)

	raw["url"] = url
	if price := assemblePrice(raw["currentPriceWhole"], raw["currentPriceFraction"]); price != "" {
		raw["price"] = map[string]any{"raw": price}
	} else {
		raw["price"] = nil
	}

	s.logger.Debug("transforming extracted data", slog.String("url", url))
	record, err := transform.Transform(raw, ProductTransformationModel)
	if err != nil {
		return nil, err
	}
	finalizeRecord(record)

	product, err := schema.Validate(record)
	if err != nil {
		return nil, fmt.Errorf("product at %s: %w", url, err)
	}
	return product, nil
}

// Close releases the browser resource. Individual scrapes never close it, so
// browser sessions can be reused across calls.
func (s *Scraper) Close() error {
	if closer, ok := s.browser.(fetch.Closer); ok {
		return closer.Close()
	}
	return nil
}

// finalizeRecord applies the record-level conventions that do not come from
// the markup: empty lists collapse to null, fields with no source on this
// marketplace stay null, and the scrape timestamp is stamped last.
func finalizeRecord(record map[string]any) {
	for _, key := range []string{"images", "features", "specifications"} {
		if list, ok := record[key].([]any); ok && len(list) == 0 {
			record[key] = nil
		}
	}
	record["categories"] = nil
	record["scrapedAt"] = time.Now().UTC()
}

func parseDocument(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func outcomeLabel(err error) string {
	var terr transform.Error
	if errors.As(err, &terr) {
		return "transform_error"
	}
	var verr schema.ValidationError
	if errors.As(err, &verr) {
		return "validation_error"
	}
	return "error"
}
