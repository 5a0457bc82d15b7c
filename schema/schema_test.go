package schema

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/afilimax/go-scrape-amazon/models"
)

func validRecord() map[string]any {
	return map[string]any{
		"title":       "Example Product",
		"externalId":  "B075357582",
		"marketplace": models.MarketplaceAmazon,
		"scrapedAt":   time.Now().UTC(),
		"price": map[string]any{
			"value":         int64(199900),
			"currency":      models.CurrencyBRL,
			"installment":   nil,
			"originalValue": nil,
			"pixPrice":      nil,
		},
		"rating": map[string]any{
			"average":      0.9,
			"totalReviews": float64(1234),
		},
		"images":   []any{"https://images.example/main.jpg"},
		"coupons":  nil,
		"shipping": nil,
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	product, err := Validate(validRecord())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if product.Title != "Example Product" {
		t.Fatalf("title = %q", product.Title)
	}
	if product.Price == nil || product.Price.Value != 199900 {
		t.Fatalf("price = %+v", product.Price)
	}
	if product.Rating == nil || product.Rating.TotalReviews != 1234 {
		t.Fatalf("rating = %+v", product.Rating)
	}
	if product.Shipping != nil {
		t.Fatalf("null shipping should stay nil, got %+v", product.Shipping)
	}
}

func TestValidateDropsUnknownKeys(t *testing.T) {
	record := validRecord()
	record["thumbnails"] = []any{"https://images.example/thumb.jpg"}
	record["url"] = "https://product.test/dp/B075357582"

	if _, err := Validate(record); err != nil {
		t.Fatalf("unknown keys must be dropped, got %v", err)
	}
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{
			name:      "empty title",
			mutate:    func(r map[string]any) { r["title"] = "" },
			wantField: "Title",
		},
		{
			name:      "missing external id",
			mutate:    func(r map[string]any) { delete(r, "externalId") },
			wantField: "ExternalID",
		},
		{
			name:      "missing marketplace",
			mutate:    func(r map[string]any) { r["marketplace"] = nil },
			wantField: "Marketplace",
		},
		{
			name:      "zero scrape time",
			mutate:    func(r map[string]any) { r["scrapedAt"] = time.Time{} },
			wantField: "ScrapedAt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(record)

			_, err := Validate(record)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %T, want ValidationError", err)
			}
			found := false
			for _, field := range verr.Fields {
				if strings.Contains(field, tt.wantField) {
					found = true
				}
			}
			if !found {
				t.Fatalf("failing fields %v do not name %s", verr.Fields, tt.wantField)
			}
		})
	}
}

func TestValidateDiscardsFailingRecordEntirely(t *testing.T) {
	record := validRecord()
	record["title"] = ""

	product, err := Validate(record)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if product != nil {
		t.Fatalf("no partial product may be returned, got %+v", product)
	}
}
