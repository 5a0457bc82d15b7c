package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/afilimax/go-scrape-amazon/amazon"
	"github.com/afilimax/go-scrape-amazon/config"
	"github.com/afilimax/go-scrape-amazon/models"
	"github.com/afilimax/go-scrape-amazon/output"
)

func main() {
	defaultCfg := config.DefaultConfig()

	fastTimeoutDefault := defaultCfg.FastTimeout
	if value, ok, err := config.EnvDuration("SCRAPER_FAST_TIMEOUT"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_FAST_TIMEOUT: %v\n", err)
		os.Exit(1)
	} else if ok {
		fastTimeoutDefault = value
	}
	browserTimeoutDefault := defaultCfg.BrowserTimeout
	if value, ok, err := config.EnvDuration("SCRAPER_BROWSER_TIMEOUT"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_BROWSER_TIMEOUT: %v\n", err)
		os.Exit(1)
	} else if ok {
		browserTimeoutDefault = value
	}
	cacheSizeDefault := defaultCfg.CacheSize
	if value, ok, err := config.EnvInt("SCRAPER_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cacheSizeDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	fastTimeout := flag.Duration("fast-timeout", fastTimeoutDefault, "Timeout for the fast HTTP strategy")
	browserTimeout := flag.Duration("browser-timeout", browserTimeoutDefault, "Timeout for the browser strategy")
	headless := flag.Bool("headless", defaultCfg.Headless, "Run the fallback browser headless")
	cacheSize := flag.Int("cache-size", cacheSizeDefault, "Product cache size (0 disables caching)")
	userAgent := flag.String("user-agent", defaultCfg.UserAgent, "User agent for both strategies")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	jsonFile := flag.String("output", "", "Write products as JSONL to this file instead of stdout")
	csvFile := flag.String("csv", "", "Also write a flattened CSV to this file")
	workers := flag.Int("workers", 2, "Concurrent scrape workers")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <product-url> [product-url ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	urls := flag.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "missing product URL argument")
		flag.Usage()
		os.Exit(2)
	}
	if *workers <= 0 {
		*workers = 1
	}

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.FastTimeout = *fastTimeout
	cfg.BrowserTimeout = *browserTimeout
	cfg.Headless = *headless
	cfg.CacheSize = *cacheSize
	cfg.UserAgent = *userAgent
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	writer, err := newWriter(*csvFile, *jsonFile)
	if err != nil {
		slog.Error("initialising output", slog.Any("error", err))
		os.Exit(1)
	}

	scraper, err := amazon.NewScraper(cfg, amazon.WithLogger(logger))
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := scraper.Close(); err != nil {
			slog.Error("close scraper", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && scraper.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(scraper.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	scraped, failed := run(ctx, scraper, writer, urls, *workers)

	if scraped > 0 {
		if err := writer.Validate(); err != nil {
			slog.Error("output validation failed", slog.Any("error", err))
			failed++
		}
	}
	if err := writer.Close(); err != nil {
		slog.Error("closing output", slog.Any("error", err))
		failed++
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	slog.Info("done", slog.Int("scraped", scraped), slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

// run fans the URL list over a fixed pool of workers and returns the number
// of successful and failed scrapes.
func run(ctx context.Context, scraper *amazon.Scraper, writer output.Writer, urls []string, workers int) (scraped, failed int) {
	urlCh := make(chan string)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range urlCh {
				start := time.Now()
				product, err := scraper.ScrapeProduct(ctx, url)
				if err != nil {
					slog.Error("scrape failed", slog.String("url", url), slog.Any("error", err))
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				if err := writer.Write([]*models.ScrapedProduct{product}); err != nil {
					slog.Error("writing output", slog.String("url", url), slog.Any("error", err))
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				slog.Info("scrape complete",
					slog.String("external_id", product.ExternalID),
					slog.String("title", product.Title),
					slog.Duration("duration", time.Since(start)),
				)
				mu.Lock()
				scraped++
				mu.Unlock()
			}
		}()
	}

	for _, url := range urls {
		select {
		case <-ctx.Done():
			slog.Warn("interrupted, draining workers")
			close(urlCh)
			wg.Wait()
			mu.Lock()
			defer mu.Unlock()
			return scraped, failed + 1
		case urlCh <- url:
		}
	}
	close(urlCh)
	wg.Wait()
	return scraped, failed
}

func newWriter(csvFile, jsonFile string) (output.Writer, error) {
	switch {
	case csvFile != "" && jsonFile != "":
		return output.NewDualWriter(csvFile, jsonFile)
	case csvFile != "":
		return output.NewCSVWriter(csvFile)
	case jsonFile != "":
		return output.NewJSONWriter(jsonFile)
	default:
		return output.NewJSONStream(os.Stdout), nil
	}
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
