package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/afilimax/go-scrape-amazon/config"
)

func TestFastClientFetch(t *testing.T) {
	const url = "http://product.test/dp/B075357582"
	const body = `<html><body><span id="productTitle">Example</span></body></html>`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", url, htmlResponder(http.StatusOK, body))

	client := NewFastClient(config.DefaultConfig())
	client.WithTransport(transport)

	result, err := client.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", result.StatusCode)
	}
	if result.Body != body {
		t.Fatalf("body = %q, want fixture body", result.Body)
	}
}

func TestFastClientReturnsChallengeBody(t *testing.T) {
	// Challenge walls are served with an error status; the body must still
	// come back so the caller can detect the marker.
	const url = "http://product.test/dp/B075357582"
	const body = `<html><body><button class="a-button-text">Continue shopping</button></body></html>`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", url, htmlResponder(http.StatusServiceUnavailable, body))

	client := NewFastClient(config.DefaultConfig())
	client.WithTransport(transport)

	result, err := client.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if result.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", result.StatusCode)
	}
	if result.Body != body {
		t.Fatalf("body = %q, want challenge body", result.Body)
	}
}

func TestFastClientRepeatFetch(t *testing.T) {
	const url = "http://product.test/dp/B075357582"

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", url, htmlResponder(http.StatusOK, "<html></html>"))

	client := NewFastClient(config.DefaultConfig())
	client.WithTransport(transport)

	for i := 0; i < 2; i++ {
		if _, err := client.Fetch(context.Background(), url); err != nil {
			t.Fatalf("fetch %d: %v", i+1, err)
		}
	}
}

func TestFastClientConnectionError(t *testing.T) {
	const url = "http://product.test/dp/B075357582"

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", url, httpmock.NewErrorResponder(errors.New("connection refused")))

	client := NewFastClient(config.DefaultConfig())
	client.WithTransport(transport)

	_, err := client.Fetch(context.Background(), url)
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	var rerr RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %T, want RetrievalError", err)
	}
	if rerr.URL != url {
		t.Fatalf("error URL = %q, want %q", rerr.URL, url)
	}
}

func TestFastClientCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewFastClient(config.DefaultConfig())
	if _, err := client.Fetch(ctx, "http://product.test/"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func htmlResponder(status int, body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(status, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}
