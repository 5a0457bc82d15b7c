// Package extract walks a declarative query model against a parsed document
// and produces a raw field-value mapping. It performs no data cleaning or
// type coercion; everything returned is as found in the markup.
package extract

import "github.com/PuerkitoBio/goquery"

// Model maps field names to the query nodes that resolve them. Fields are
// independent; absence in one never blocks extraction of its siblings.
type Model map[string]Node

// Node describes how a single field is resolved against a document.
type Node struct {
	// Query is a CSS selector evaluated against the current document scope.
	Query string
	// Attr names the attribute to read from matched elements. Empty means
	// the element's inner text.
	Attr string
	// Model, when set, recurses into each matched element instead of
	// reading a scalar value.
	Model Model
	// Multiple extracts every match in document order rather than the first.
	Multiple bool
	// Default is used when a single-valued query yields no match.
	Default any
}

// Extract evaluates every node of model against sel. The result keys every
// declared field: scalar fields resolve to a string, their default, or nil;
// multi-valued fields resolve to a list which is empty, never nil, when
// nothing matches.
func Extract(sel *goquery.Selection, model Model) map[string]any {
	out := make(map[string]any, len(model))
	for name, node := range model {
		out[name] = extractNode(sel, node)
	}
	return out
}

func extractNode(sel *goquery.Selection, node Node) any {
	matches := sel.Find(node.Query)

	if node.Multiple {
		values := []any{}
		matches.Each(func(_ int, match *goquery.Selection) {
			if node.Model != nil {
				values = append(values, Extract(match, node.Model))
				return
			}
			values = append(values, readChannel(match, node.Attr))
		})
		return values
	}

	first := matches.First()
	if first.Length() == 0 {
		return node.Default
	}
	if node.Model != nil {
		return Extract(first, node.Model)
	}
	if value := readChannel(first, node.Attr); value != nil {
		return value
	}
	return node.Default
}

// readChannel reads the requested value channel from a matched element:
// inner text by default, or a named attribute. A missing attribute reads
// as nil, not as an empty string.
func readChannel(sel *goquery.Selection, attr string) any {
	if attr == "" {
		return sel.Text()
	}
	value, ok := sel.Attr(attr)
	if !ok {
		return nil
	}
	return value
}
