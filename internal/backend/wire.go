package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Flag decodes the backend's booleans, which arrive as true/false, 0/1 or
// "0"/"1" depending on the endpoint.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = false
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if n, ok := v.(float64); ok {
		*f = n != 0
		return nil
	}
	parsed, err := cast.ToBoolE(v)
	if err != nil {
		return fmt.Errorf("flag %s: %w", string(b), err)
	}
	*f = Flag(parsed)
	return nil
}

// flagOr returns def when the field was absent.
func flagOr(f *Flag, def bool) bool {
	if f == nil {
		return def
	}
	return bool(*f)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp accepts the date formats the backend emits. Unknown formats
// decode to the zero value.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t Timestamp) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// amount renders a decimal as a bare JSON number with two decimals.
func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
