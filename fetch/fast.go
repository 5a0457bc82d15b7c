package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/gocolly/colly/v2"

	"github.com/afilimax/go-scrape-amazon/config"
)

// FastClient issues plain HTTP requests shaped to resemble ordinary browser
// traffic. It is the initial retrieval strategy; the body it returns may be
// a challenge interstitial, which the caller is expected to detect.
type FastClient struct {
	collector *colly.Collector
}

// NewFastClient builds a fast client configured from cfg.
func NewFastClient(cfg *config.Config) *FastClient {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	// Challenge walls are often served with an error status; the body is
	// still needed so the caller can detect the marker.
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(cfg.FastTimeout)
	collector.WithTransport(cloudflarebp.AddCloudFlareByPass(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.FastTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}))

	return &FastClient{collector: collector}
}

// WithTransport replaces the underlying round tripper. Used by tests to
// inject a mock transport.
func (f *FastClient) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch retrieves url and returns its body and status code.
func (f *FastClient) Fetch(ctx context.Context, url string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, RetrievalError{URL: url, Err: err}
	}

	// Clone per request so response handlers never leak between fetches.
	collector := f.collector.Clone()

	var result *Result
	var fetchErr error
	var fetchStatus int

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})
	collector.OnResponse(func(r *colly.Response) {
		result = &Result{Body: string(r.Body), StatusCode: r.StatusCode}
	})
	collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = Classify(err, statusCode)
		fetchStatus = statusCode
	})

	if err := collector.Visit(url); err != nil {
		return nil, RetrievalError{URL: url, Err: Classify(err, 0)}
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, RetrievalError{URL: url, StatusCode: fetchStatus, Err: fetchErr}
	}
	if result == nil {
		return nil, RetrievalError{URL: url, Err: errors.New("no response received")}
	}
	return result, nil
}
