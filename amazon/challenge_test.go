package amazon

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestHasChallenge(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "portuguese button text",
			body: `<html><body><button class="a-button-text">Continuar comprando</button></body></html>`,
			want: true,
		},
		{
			name: "english button text",
			body: `<html><body><span class="a-button-text">Continue shopping</span></body></html>`,
			want: true,
		},
		{
			name: "button text with surrounding markup",
			body: `<html><body><form><button class="a-button-text" type="submit">
				Continuar comprando
			</button></form></body></html>`,
			want: true,
		},
		{
			name: "product page without marker",
			body: `<html><body><span id="productTitle">Example Product</span></body></html>`,
			want: false,
		},
		{
			name: "button class with unrelated text",
			body: `<html><body><button class="a-button-text">Adicionar ao carrinho</button></body></html>`,
			want: false,
		},
		{
			name: "marker text without the control class",
			body: `<html><body><p>Continue shopping</p></body></html>`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasChallenge(parseHTML(t, tt.body)); got != tt.want {
				t.Fatalf("hasChallenge = %v, want %v", got, tt.want)
			}
		})
	}
}
