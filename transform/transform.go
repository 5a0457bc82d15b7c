// Package transform applies a declarative transformation model to a raw
// field-value mapping, producing a normalized record. Models are plain data:
// ordered per-field step sequences with optional guards, plus append/delete
// directives that run once after all field steps complete.
package transform

import (
	"errors"
	"fmt"
	"maps"
)

// Model is an ordered set of field transformations followed by record-level
// append and delete directives. Field order is significant: later fields and
// appends may reference earlier-set values.
type Model struct {
	Fields []Field
	// Append adds fixed key/value pairs to the record after all field steps
	// complete. Used for values known from context rather than markup.
	Append map[string]any
	// Delete removes superseded intermediate fields after appends run.
	Delete []string
}

// Field transforms one named field of the record. A field carries either a
// step sequence or a nested model; a nested model recurses into the source
// mapping (or into each element of a source list when Multiple is set).
type Field struct {
	Name string
	// Key names the source field to read. Defaults to Name.
	Key string
	// When guards the whole field against the record being built. When it
	// reports false the field resolves to Default without running anything.
	When func(record map[string]any) bool
	// Default is the field value used when When rejects the record or a
	// nested model's source has the wrong shape.
	Default any
	Steps   []Step
	// Model transforms a nested mapping, producing the same normalized
	// shape before the field's step sequence proceeds.
	Model *Model
	// Multiple applies Model to each element of a source list.
	Multiple bool
}

// Step is a single transformation applied to a field's running value.
type Step struct {
	// FromKey, when set, replaces the running value with the named field of
	// the record being built, enabling cross-field reads.
	FromKey string
	// When guards the step body. A false guard skips the step and the
	// running value passes through unchanged.
	When func(value any) bool
	// Fn computes the next running value. May be nil for pure get steps.
	Fn func(value any) (any, error)
}

// Error reports a step that could not produce a valid value. It aborts the
// whole transformation: a malformed value is worse than a missing one.
type Error struct {
	Field string
	Value any
	Err   error
}

func (e Error) Error() string {
	return fmt.Errorf("transform field %q (value %v): %w", e.Field, e.Value, e.Err).Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

// Transform applies model to raw and returns the normalized record. The
// input is never mutated. Untouched input fields flow through to the output;
// the model's Delete directive removes the ones that must not leak.
func Transform(raw map[string]any, model *Model) (map[string]any, error) {
	record := maps.Clone(raw)
	if record == nil {
		record = map[string]any{}
	}

	for _, field := range model.Fields {
		value, err := transformField(record, field)
		if err != nil {
			return nil, err
		}
		record[field.Name] = value
	}

	for key, value := range model.Append {
		record[key] = value
	}
	for _, key := range model.Delete {
		delete(record, key)
	}

	return record, nil
}

func transformField(record map[string]any, field Field) (any, error) {
	if field.When != nil && !field.When(record) {
		return field.Default, nil
	}

	key := field.Key
	if key == "" {
		key = field.Name
	}
	running := record[key]

	if field.Model != nil {
		nested, err := transformNested(running, field)
		if err != nil {
			return nil, err
		}
		running = nested
	}

	for _, step := range field.Steps {
		if step.FromKey != "" {
			running = record[step.FromKey]
		}
		if step.When != nil && !step.When(running) {
			continue
		}
		if step.Fn == nil {
			continue
		}
		next, err := step.Fn(running)
		if err != nil {
			return nil, Error{Field: field.Name, Value: running, Err: err}
		}
		running = next
	}

	return running, nil
}

func transformNested(source any, field Field) (any, error) {
	if field.Multiple {
		list, ok := source.([]any)
		if !ok {
			return field.Default, nil
		}
		out := make([]any, 0, len(list))
		for i, element := range list {
			mapping, ok := element.(map[string]any)
			if !ok {
				return nil, Error{
					Field: fmt.Sprintf("%s[%d]", field.Name, i),
					Value: element,
					Err:   errors.New("expected a nested mapping"),
				}
			}
			child, err := Transform(mapping, field.Model)
			if err != nil {
				return nil, prefixField(err, field.Name)
			}
			out = append(out, child)
		}
		return out, nil
	}

	mapping, ok := source.(map[string]any)
	if !ok {
		// Absent or scalar source suppresses the whole sub-record rather
		// than yielding one with null members.
		return field.Default, nil
	}
	child, err := Transform(mapping, field.Model)
	if err != nil {
		return nil, prefixField(err, field.Name)
	}
	return child, nil
}

func prefixField(err error, name string) error {
	var terr Error
	if errors.As(err, &terr) {
		terr.Field = name + "." + terr.Field
		return terr
	}
	return err
}
