package amazon

import (
	"fmt"
	"strings"

	"github.com/afilimax/go-scrape-amazon/extract"
	"github.com/afilimax/go-scrape-amazon/models"
	"github.com/afilimax/go-scrape-amazon/transform"
)

// ProductExtractionModel declares what to pull out of a product detail page.
// The price is split across several DOM nodes by the source markup; the
// fragments are extracted separately and assembled before transformation.
var ProductExtractionModel = extract.Model{
	"title": {
		Query: "#productTitle",
	},
	"currentPriceSymbol": {
		Query: ".a-price-symbol",
	},
	"currentPriceWhole": {
		Query: ".a-price-whole",
	},
	"currentPriceDecimal": {
		Query: ".a-price-decimal",
	},
	"currentPriceFraction": {
		Query: ".a-price-fraction",
	},
	"rating": {
		Query: "#averageCustomerReviews_feature_div, #averageCustomerReviews",
		Model: extract.Model{
			"average": {
				Query: ".cm-cr-review-stars-spacing-big span, #acrPopover .a-color-base",
			},
			"totalReviews": {
				Query: "#acrCustomerReviewText",
			},
		},
	},
	"description": {
		Query: "#productDescription p, div[data-a-expander-name='book_description_expander']",
	},
	"images": {
		Query:    ".imgTagWrapper img",
		Attr:     "src",
		Multiple: true,
	},
	"brand": {
		Query: "#bylineInfo",
	},
	"thumbnails": {
		Query:    "#altImages img",
		Attr:     "src",
		Multiple: true,
	},
	"specifications": {
		Query:    "#productOverview_feature_div table.a-normal.a-spacing-micro tr",
		Multiple: true,
		Model: extract.Model{
			"key": {
				Query: "td:nth-child(1) span",
			},
			"value": {
				Query: "td:nth-child(2) span",
			},
		},
	},
	"features": {
		Query:    "#prodDetails table tr",
		Multiple: true,
		Model: extract.Model{
			"key": {
				Query: "th.prodDetSectionEntry",
			},
			"value": {
				Query: "td.prodDetAttrValue",
			},
		},
	},
	"availability": {
		Query: "#availability, #tmm-grid-swatch-KINDLE",
		Model: extract.Model{
			"inStockText": {
				Query: "span, #kindleExtraMessage",
			},
		},
	},
	"shipping": {
		Query: "#deliveryBlockMessage",
		Model: extract.Model{
			"price": {
				Query: "span[data-csa-c-delivery-price]",
				Attr:  "data-csa-c-delivery-price",
			},
			"estimatedTime": {
				Query: ".a-text-bold",
			},
		},
	},
}

var priceModel = &transform.Model{
	Fields: []transform.Field{
		{
			Name: "value",
			Steps: []transform.Step{
				{FromKey: "raw"},
				{Fn: transform.MinorUnits},
			},
		},
	},
	Append: map[string]any{
		"currency":      models.CurrencyBRL,
		"installment":   nil,
		"originalValue": nil,
		"pixPrice":      nil,
	},
	Delete: []string{"raw"},
}

var ratingModel = &transform.Model{
	Fields: []transform.Field{
		{
			Name: "average",
			Steps: []transform.Step{
				{When: transform.IsString, Fn: transform.Replace(",", ".")},
				{When: transform.IsString, Fn: transform.ToNumber},
				{When: transform.IsNumber, Fn: transform.DivideBy(ratingScale)},
			},
		},
		{
			Name: "totalReviews",
			Steps: []transform.Step{
				{When: transform.IsString, Fn: transform.RemovePattern(`\(|\)`)},
				{When: transform.IsString, Fn: transform.Replace(".", "")},
				{When: transform.IsString, Fn: transform.ToNumber},
			},
		},
	},
}

var availabilityModel = &transform.Model{
	Fields: []transform.Field{
		{
			Name: "inStock",
			Key:  "inStockText",
			Steps: []transform.Step{
				{Fn: inStock},
			},
		},
	},
	Append: map[string]any{
		"quantity": nil,
	},
	Delete: []string{"inStockText"},
}

var shippingModel = &transform.Model{
	Fields: []transform.Field{
		{
			Name: "price",
			Steps: []transform.Step{
				{FromKey: "price"},
				{When: transform.IsNumericString, Fn: transform.MinorUnits},
				{When: transform.IsString, Fn: freeShippingPrice},
			},
		},
		{
			Name: "estimatedTime",
			Steps: []transform.Step{
				{FromKey: "estimatedTime"},
				{When: transform.IsString, Fn: transform.Trim},
			},
		},
	},
	Append: map[string]any{
		"currency":     models.CurrencyBRL,
		"prime":        nil,
		"full":         nil,
		"freeShipping": nil,
	},
}

var keyValueModel = &transform.Model{
	Fields: []transform.Field{
		{
			Name: "key",
			Steps: []transform.Step{
				{When: transform.IsString, Fn: transform.Trim},
			},
		},
		{
			Name: "value",
			Steps: []transform.Step{
				{When: transform.IsString, Fn: cleanSpecificationText},
			},
		},
	},
}

// ProductTransformationModel normalizes the raw extraction result into the
// shape the product schema validates. Field order is significant: price
// reads the assembled price string, and the price fragments are deleted only
// after every field has run.
var ProductTransformationModel = &transform.Model{
	Fields: []transform.Field{
		{
			Name: "title",
			Steps: []transform.Step{
				{Fn: transform.Trim},
			},
		},
		{
			Name: "externalId",
			Steps: []transform.Step{
				{FromKey: "url"},
				{Fn: externalID},
			},
		},
		{
			Name: "description",
			Steps: []transform.Step{
				{When: transform.IsString, Fn: transform.Trim},
				{When: transform.IsString, Fn: transform.CollapseWhitespace},
			},
		},
		{
			Name: "brand",
			Steps: []transform.Step{
				{When: transform.IsString, Fn: transform.CollapseWhitespace},
			},
		},
		{
			Name:  "price",
			Model: priceModel,
		},
		{
			Name:  "rating",
			Model: ratingModel,
		},
		{
			Name:  "availability",
			Model: availabilityModel,
		},
		{
			Name:     "features",
			Multiple: true,
			Model:    keyValueModel,
		},
		{
			Name:     "specifications",
			Multiple: true,
			Model:    keyValueModel,
		},
		{
			Name: "shipping",
			When: func(record map[string]any) bool {
				return transform.IsObject(record["shipping"])
			},
			Default: nil,
			Model:   shippingModel,
		},
	},
	Append: map[string]any{
		"marketplace": models.MarketplaceAmazon,
		"coupons":     nil,
	},
	Delete: []string{
		"currentPriceSymbol",
		"currentPriceWhole",
		"currentPriceDecimal",
		"currentPriceFraction",
	},
}

// ratingScale is the maximum of the marketplace's star rating; averages are
// normalized to a 0-1 fraction.
const ratingScale = 5

var inStockTexts = []string{
	"Em estoque",
	"Disponível instantaneamente",
}

// inStock maps the availability text to a boolean. A missing or non-string
// value reads as out of stock rather than failing the record.
func inStock(v any) (any, error) {
	text, ok := v.(string)
	if !ok {
		return false, nil
	}
	text = strings.TrimSpace(text)
	for _, marker := range inStockTexts {
		if text == marker {
			return true, nil
		}
	}
	return false, nil
}

// freeShippingPrice resolves the literal free-shipping marker to a null
// price. Any other non-numeric string is a malformed price and fails the
// record: silently dropping it would be worse than missing it.
func freeShippingPrice(v any) (any, error) {
	price, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string, got %T", v)
	}
	if strings.ToUpper(strings.TrimSpace(price)) == "GRÁTIS" {
		return nil, nil
	}
	return nil, fmt.Errorf("invalid shipping price %q", price)
}

var entityReplacer = strings.NewReplacer(
	"&nbsp", " ",
	"&gt", ">",
	"&lrm", "",
	"&amp", "&",
)

// cleanSpecificationText undoes the stray, unterminated HTML entities the
// detail tables carry and trims the result.
func cleanSpecificationText(v any) (any, error) {
	text, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string, got %T", v)
	}
	return strings.TrimSpace(entityReplacer.Replace(text)), nil
}

// externalID derives the product identifier from the page URL.
func externalID(v any) (any, error) {
	rawURL, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string, got %T", v)
	}
	return ExtractASIN(rawURL)
}

// assemblePrice joins the separately extracted whole and fraction price
// fragments into a single decimal string, stripping locale thousands
// separators. Returns "" when no price was extracted.
func assemblePrice(whole, fraction any) string {
	w, ok := whole.(string)
	if !ok {
		return ""
	}
	w = stripSeparators(w)
	if w == "" {
		return ""
	}
	f, _ := fraction.(string)
	f = stripSeparators(f)
	if f == "" {
		f = "00"
	}
	return w + "." + f
}

func stripSeparators(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	return s
}
