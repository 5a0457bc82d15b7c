package amazon

import "testing"

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ref segment and query string",
			input: "https://www.amazon.com.br/ExampleLink/dp/B075357582/ref=sr_1_1?keywords=example&qid=12345",
			want:  "https://www.amazon.com.br/ExampleLink/dp/B075357582",
		},
		{
			name:  "query string only",
			input: "https://www.amazon.com.br/ExampleLink/dp/B075357582?th=1",
			want:  "https://www.amazon.com.br/ExampleLink/dp/B075357582",
		},
		{
			name:  "already canonical",
			input: "https://www.amazon.com.br/ExampleLink/dp/B075357582",
			want:  "https://www.amazon.com.br/ExampleLink/dp/B075357582",
		},
		{
			name:  "fragment dropped",
			input: "https://www.amazon.com.br/dp/B075357582#reviews",
			want:  "https://www.amazon.com.br/dp/B075357582",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalURL(tt.input); got != tt.want {
				t.Fatalf("CanonicalURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalURLIdempotent(t *testing.T) {
	input := "https://www.amazon.com.br/ExampleLink/dp/B075357582/ref=sr_1_1?keywords=example"
	once := CanonicalURL(input)
	if twice := CanonicalURL(once); twice != once {
		t.Fatalf("normalization is not idempotent: %q then %q", once, twice)
	}
}

func TestCanonicalURLMalformedPassesThrough(t *testing.T) {
	// Normalization is best effort; a malformed URL never blocks a scrape.
	input := ":/not-a-url"
	if got := CanonicalURL(input); got != input {
		t.Fatalf("CanonicalURL(%q) = %q, want input unchanged", input, got)
	}
}

func TestExtractASIN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "dp segment",
			input: "https://www.amazon.com.br/ExampleLink/dp/B075357582",
			want:  "B075357582",
		},
		{
			name:  "gp product segment",
			input: "https://www.amazon.com.br/gp/product/B00X4WHP5E",
			want:  "B00X4WHP5E",
		},
		{
			name:  "dp segment with trailing path",
			input: "https://www.amazon.com.br/dp/B075357582/ref=nav",
			want:  "B075357582",
		},
		{
			name:    "no identifier",
			input:   "https://www.amazon.com.br/gp/bestsellers",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractASIN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractASIN(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractASIN(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ExtractASIN(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAssemblePrice(t *testing.T) {
	tests := []struct {
		name     string
		whole    any
		fraction any
		want     string
	}{
		{name: "plain fragments", whole: "199", fraction: "90", want: "199.90"},
		{name: "thousands separator", whole: "1.234", fraction: "56", want: "1234.56"},
		{name: "trailing comma on whole", whole: "1.234,", fraction: "56", want: "1234.56"},
		{name: "missing fraction", whole: "199", fraction: nil, want: "199.00"},
		{name: "missing whole", whole: nil, fraction: "90", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assemblePrice(tt.whole, tt.fraction); got != tt.want {
				t.Fatalf("assemblePrice(%v, %v) = %q, want %q", tt.whole, tt.fraction, got, tt.want)
			}
		})
	}
}
