package hydrator

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// Deserializer converts wire attribute values into record values.
type Deserializer struct {
	dates map[string]struct{}
	loc   *time.Location
}

// NewDeserializer returns a Deserializer treating the given resource keys
// as dates. Timestamps without a zone are read in loc (UTC when nil).
func NewDeserializer(dates []string, loc *time.Location) *Deserializer {
	if loc == nil {
		loc = time.UTC
	}
	d := &Deserializer{dates: make(map[string]struct{}, len(dates)), loc: loc}
	for _, k := range dates {
		d.dates[k] = struct{}{}
	}
	return d
}

// IsDate reports whether resourceKey is a date attribute.
func (d *Deserializer) IsDate(resourceKey string) bool {
	_, ok := d.dates[resourceKey]
	return ok
}

// Deserialize returns the record value for a raw attribute value. Date
// attributes become time.Time, or nil for a null value. Everything else
// passes through unchanged.
func (d *Deserializer) Deserialize(value any, resourceKey string) (any, error) {
	if !d.IsDate(resourceKey) || value == nil {
		return value, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, &ValidationError{Key: resourceKey, Value: value, Err: fmt.Errorf("expecting a date string, got %T", value)}
	}
	t, err := d.parseDate(s)
	if err != nil {
		return nil, &ValidationError{Key: resourceKey, Value: value, Err: err}
	}
	return t, nil
}

func (d *Deserializer) parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return dateparse.ParseIn(s, d.loc)
}
