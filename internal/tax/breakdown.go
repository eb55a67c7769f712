package tax

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Breakdown accumulates amounts keyed by rule name, preserving first-seen
// insertion order. Rules sharing a name are summed into one entry.
type Breakdown struct {
	names   []string
	amounts map[string]decimal.Decimal
}

// NewBreakdown returns an empty breakdown.
func NewBreakdown() *Breakdown {
	return &Breakdown{amounts: make(map[string]decimal.Decimal)}
}

// Add accumulates amount under name, inserting the name on first use.
func (b *Breakdown) Add(name string, amount decimal.Decimal) {
	if b.amounts == nil {
		b.amounts = make(map[string]decimal.Decimal)
	}
	existing, ok := b.amounts[name]
	if !ok {
		b.names = append(b.names, name)
	}
	b.amounts[name] = existing.Add(amount)
}

// Merge folds every entry of other into b.
func (b *Breakdown) Merge(other *Breakdown) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		b.Add(name, other.amounts[name])
	}
}

// Get returns the accumulated amount for name, zero when absent.
func (b *Breakdown) Get(name string) decimal.Decimal {
	if b == nil || b.amounts == nil {
		return decimal.Zero
	}
	return b.amounts[name]
}

// Names returns the accumulated names in insertion order.
func (b *Breakdown) Names() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Len reports the number of distinct names.
func (b *Breakdown) Len() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}

// Total sums every accumulated amount.
func (b *Breakdown) Total() decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, name := range b.names {
		total = total.Add(b.amounts[name])
	}
	return total
}

// MarshalJSON renders the breakdown as a JSON object in insertion order.
// Report consumers depend on stable key ordering.
func (b *Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range b.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(b.Get(name))
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a breakdown from a JSON object. Key order within
// the object is preserved only as Go's decoder reports it, so round-tripped
// breakdowns keep their totals but not necessarily their insertion order.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	raw := map[string]decimal.Decimal{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Breakdown{amounts: make(map[string]decimal.Decimal, len(raw))}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			continue
		}
		if _, seen := b.amounts[name]; !seen {
			if amount, exists := raw[name]; exists {
				b.names = append(b.names, name)
				b.amounts[name] = amount
			}
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	return nil
}
