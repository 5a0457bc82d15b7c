package fetch

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/afilimax/go-scrape-amazon/config"
)

// BrowserClient drives a headless browser with automation fingerprints
// masked. It is the fallback retrieval strategy for pages that serve a
// challenge wall to plain HTTP clients; the challenge control is clicked
// through automatically when present.
//
// The underlying browser allocator is a long-lived resource shared across
// fetches and serialized by a mutex. The owner must call Close when no
// further fetches are expected.
type BrowserClient struct {
	mu        sync.Mutex
	allocCtx  context.Context
	allocStop context.CancelFunc
	timeout   time.Duration
}

// NewBrowserClient builds a browser client configured from cfg. The browser
// process itself is not launched until the first fetch.
func NewBrowserClient(cfg *config.Config) *BrowserClient {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, allocStop := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserClient{
		allocCtx:  allocCtx,
		allocStop: allocStop,
		timeout:   cfg.BrowserTimeout,
	}
}

// Fetch navigates to url in a fresh browser tab and returns the rendered
// document. Concurrent calls are serialized on the shared browser resource.
func (b *BrowserClient) Fetch(ctx context.Context, url string) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	taskCtx, cancelTask := chromedp.NewContext(b.allocCtx)
	defer cancelTask()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var body string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		dismissChallenge(),
		chromedp.OuterHTML("html", &body),
	)
	if err != nil {
		return nil, RetrievalError{URL: url, Err: Classify(err, 0)}
	}

	return &Result{Body: body, StatusCode: http.StatusOK}, nil
}

// Close releases the browser resource. No fetches may follow.
func (b *BrowserClient) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocStop()
	return nil
}

const challengeClickScript = `(() => {
	const controls = document.querySelectorAll("button.a-button-text, span.a-button-text");
	for (const el of controls) {
		const text = (el.innerText || "").trim();
		if (text === "Continuar comprando" || text === "Continue shopping") {
			el.click();
			return true;
		}
	}
	return false;
})()`

// dismissChallenge clicks the continue-shopping control when the challenge
// interstitial was served instead of product content, then waits for the
// follow-up navigation to settle.
func dismissChallenge() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var clicked bool
		if err := chromedp.Evaluate(challengeClickScript, &clicked).Do(ctx); err != nil {
			return err
		}
		if !clicked {
			return nil
		}
		if err := chromedp.Sleep(2 * time.Second).Do(ctx); err != nil {
			return err
		}
		return chromedp.WaitReady("body").Do(ctx)
	})
}
