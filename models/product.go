// Package models defines the product record produced by the scraper.
package models

import "time"

// MarketplaceAmazon identifies the marketplace all products scraped by this
// module belong to.
const MarketplaceAmazon = "amazon"

// CurrencyBRL is the currency code attached to monetary values.
const CurrencyBRL = "BRL"

// Price holds a monetary value in integer minor units (three implied decimal
// digits), avoiding floating-point currency math.
type Price struct {
	Value         int64  `json:"value" validate:"min=0"`
	Currency      string `json:"currency" validate:"required"`
	Installment   *int64 `json:"installment"`
	OriginalValue *int64 `json:"originalValue"`
	PixPrice      *int64 `json:"pixPrice"`
}

// Rating holds the review average normalized to a 0-1 fraction.
type Rating struct {
	Average      float64 `json:"average" validate:"min=0,max=1"`
	TotalReviews int64   `json:"totalReviews" validate:"min=0"`
}

// Availability reports whether the product is in stock.
type Availability struct {
	InStock  bool   `json:"inStock"`
	Quantity *int64 `json:"quantity"`
}

// Shipping holds delivery price (minor units, nil when free) and estimate.
type Shipping struct {
	Price         *int64  `json:"price"`
	Currency      string  `json:"currency"`
	EstimatedTime *string `json:"estimatedTime"`
	Prime         *bool   `json:"prime"`
	Full          *bool   `json:"full"`
	FreeShipping  *bool   `json:"freeShipping"`
}

// KeyValue is a single specification or feature row.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ScrapedProduct is the validated terminal record of a scrape attempt. It is
// constructed once per attempt and never mutated after validation succeeds.
type ScrapedProduct struct {
	Title          string        `json:"title" validate:"required"`
	ExternalID     string        `json:"externalId" validate:"required"`
	Marketplace    string        `json:"marketplace" validate:"required"`
	ScrapedAt      time.Time     `json:"scrapedAt" validate:"required"`
	Price          *Price        `json:"price"`
	Rating         *Rating       `json:"rating"`
	Availability   *Availability `json:"availability"`
	Shipping       *Shipping     `json:"shipping"`
	Images         []string      `json:"images"`
	Features       []KeyValue    `json:"features"`
	Specifications []KeyValue    `json:"specifications"`
	Description    *string       `json:"description"`
	Brand          *string       `json:"brand"`
	Coupons        []string      `json:"coupons"`
	Categories     []string      `json:"categories"`
}
