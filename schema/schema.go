// Package schema checks candidate product records against the terminal
// ScrapedProduct contract. Validation is all-or-nothing: a failing record is
// discarded entirely, never returned in part.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/afilimax/go-scrape-amazon/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError reports a record that failed schema validation, naming the
// failing fields.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Errorf("invalid product record (fields: %s): %w", strings.Join(e.Fields, ", "), e.Err).Error()
	}
	return fmt.Errorf("invalid product record: %w", e.Err).Error()
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// Validate materializes a normalized record into a ScrapedProduct and checks
// its required fields. Keys the schema does not know are dropped.
func Validate(record map[string]any) (*models.ScrapedProduct, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, ValidationError{Err: fmt.Errorf("encode record: %w", err)}
	}

	var product models.ScrapedProduct
	if err := json.Unmarshal(payload, &product); err != nil {
		return nil, ValidationError{Err: fmt.Errorf("decode record: %w", err)}
	}

	if err := validate.Struct(&product); err != nil {
		var fieldErrs validator.ValidationErrors
		var fields []string
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Namespace())
			}
		}
		return nil, ValidationError{Fields: fields, Err: err}
	}

	return &product, nil
}
