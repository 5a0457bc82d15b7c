// Package output provides sinks for scraped product records.
package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/afilimax/go-scrape-amazon/models"
)

// Writer defines the interface for product output.
type Writer interface {
	Write(products []*models.ScrapedProduct) error
	Close() error
	Validate() error
}

// CSVWriter writes a flattened view of each product to CSV. Nested optional
// fields (price, rating, shipping) collapse to empty cells when absent.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	header := []string{
		"title", "external_id", "marketplace",
		"price_value", "currency", "rating_average", "total_reviews",
		"in_stock", "free_shipping", "scraped_at",
	}
	if err := writer.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends products to the CSV output.
func (cw *CSVWriter) Write(products []*models.ScrapedProduct) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, product := range products {
		if err := cw.writer.Write(csvRecord(product)); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

func csvRecord(product *models.ScrapedProduct) []string {
	record := []string{
		product.Title,
		product.ExternalID,
		product.Marketplace,
		"", "", "", "", "", "",
		product.ScrapedAt.Format(time.RFC3339),
	}
	if product.Price != nil {
		record[3] = strconv.FormatInt(product.Price.Value, 10)
		record[4] = product.Price.Currency
	}
	if product.Rating != nil {
		record[5] = strconv.FormatFloat(product.Rating.Average, 'f', -1, 64)
		record[6] = strconv.FormatInt(product.Rating.TotalReviews, 10)
	}
	if product.Availability != nil {
		record[7] = strconv.FormatBool(product.Availability.InStock)
	}
	if product.Shipping != nil && product.Shipping.FreeShipping != nil {
		record[8] = strconv.FormatBool(*product.Shipping.FreeShipping)
	}
	return record
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises a file-backed JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// NewJSONStream writes newline-delimited JSON to w without taking ownership
// of any file handle. Close only flushes.
func NewJSONStream(w io.Writer) *JSONWriter {
	buffer := bufio.NewWriter(w)
	return &JSONWriter{
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}
}

// Write appends products in JSONL format.
func (jw *JSONWriter) Write(products []*models.ScrapedProduct) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, product := range products {
		if err := jw.encoder.Encode(product); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file, if any.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	if jw.file == nil {
		return nil
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	if jw.file == nil {
		return nil
	}
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
